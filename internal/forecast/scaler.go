// v0
// internal/forecast/scaler.go
package forecast

// minMaxScaler rescales each feature column into [0, 1] using the column's
// observed range. Columns with zero range map every value to 0; the inverse
// transform then restores the constant.
type minMaxScaler struct {
	min []float64
	max []float64
}

// fitScaler computes per-column bounds over rows. All rows must share the
// same width; rows must be non-empty.
func fitScaler(rows [][]float64) *minMaxScaler {
	width := len(rows[0])
	s := &minMaxScaler{
		min: make([]float64, width),
		max: make([]float64, width),
	}
	copy(s.min, rows[0])
	copy(s.max, rows[0])
	for _, row := range rows[1:] {
		for j, v := range row {
			if v < s.min[j] {
				s.min[j] = v
			}
			if v > s.max[j] {
				s.max[j] = v
			}
		}
	}
	return s
}

func (s *minMaxScaler) transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			span := s.max[j] - s.min[j]
			if span == 0 {
				scaled[j] = 0
				continue
			}
			scaled[j] = (v - s.min[j]) / span
		}
		out[i] = scaled
	}
	return out
}

func (s *minMaxScaler) inverse(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		span := s.max[j] - s.min[j]
		if span == 0 {
			out[j] = s.min[j]
			continue
		}
		out[j] = v*span + s.min[j]
	}
	return out
}
