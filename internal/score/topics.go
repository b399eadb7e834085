// v0
// internal/score/topics.go
package score

// TopicCompletionScore is the share of scheduled topics actually covered:
// (total − transferred) / total, or 0 when nothing was scheduled. Malformed
// upstream data with transferred > total produces a negative score, which is
// passed through unmodified rather than clamped.
func TopicCompletionScore(totalTopics, transferredTopics int) float64 {
	if totalTopics <= 0 {
		return 0.0
	}
	return float64(totalTopics-transferredTopics) / float64(totalTopics)
}
