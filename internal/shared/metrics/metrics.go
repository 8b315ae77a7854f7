package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	quizGenStartedTotal   atomic.Uint64
	quizGenCompletedTotal atomic.Uint64
	quizGenFailedTotal    atomic.Uint64

	quizJobsReceivedTotal             atomic.Uint64
	quizJobsCompletedTotal            atomic.Uint64
	quizJobsFailedTotal               atomic.Uint64
	quizJobsDeletedUnrecoverableTotal atomic.Uint64

	topicExtractionTotal  atomic.Uint64
	headingsRejectedTotal atomic.Uint64
	ragQueriesTotal       atomic.Uint64
	ragCacheHitsTotal     atomic.Uint64

	quizGenDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	ragDuration     = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2000, 5000})
)

// IncQuizGenStarted increments the quiz generation started counter.
func IncQuizGenStarted() {
	quizGenStartedTotal.Add(1)
}

// IncQuizGenCompleted increments the quiz generation completed counter.
func IncQuizGenCompleted() {
	quizGenCompletedTotal.Add(1)
}

// IncQuizGenFailed increments the quiz generation failed counter.
func IncQuizGenFailed() {
	quizGenFailedTotal.Add(1)
}

// IncQuizJobsReceived increments the queue jobs received counter.
func IncQuizJobsReceived() {
	quizJobsReceivedTotal.Add(1)
}

// IncQuizJobsCompleted increments the queue jobs completed counter.
func IncQuizJobsCompleted() {
	quizJobsCompletedTotal.Add(1)
}

// IncQuizJobsFailed increments the queue jobs failed counter.
func IncQuizJobsFailed() {
	quizJobsFailedTotal.Add(1)
}

// IncQuizJobsDeletedUnrecoverable increments the counter for malformed
// queue messages deleted without processing.
func IncQuizJobsDeletedUnrecoverable() {
	quizJobsDeletedUnrecoverableTotal.Add(1)
}

// IncTopicExtraction increments the topic extraction run counter.
func IncTopicExtraction() {
	topicExtractionTotal.Add(1)
}

// AddHeadingsRejected adds to the rejected heading candidate counter.
func AddHeadingsRejected(n int) {
	if n <= 0 {
		return
	}
	headingsRejectedTotal.Add(uint64(n))
}

// IncRAGQuery increments the RAG query counter.
func IncRAGQuery() {
	ragQueriesTotal.Add(1)
}

// IncRAGCacheHit increments the RAG cache hit counter.
func IncRAGCacheHit() {
	ragCacheHitsTotal.Add(1)
}

// ObserveQuizGenDurationMs records a quiz generation duration in milliseconds.
func ObserveQuizGenDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	quizGenDuration.Observe(value)
}

// ObserveRAGDurationMs records a RAG search duration in milliseconds.
func ObserveRAGDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	ragDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "quiz_generation_started_total", "Total quiz generations started", quizGenStartedTotal.Load())
	writeCounter(&buf, "quiz_generation_completed_total", "Total quiz generations completed", quizGenCompletedTotal.Load())
	writeCounter(&buf, "quiz_generation_failed_total", "Total quiz generations failed", quizGenFailedTotal.Load())
	writeCounter(&buf, "quiz_jobs_received_total", "Total quiz queue jobs received", quizJobsReceivedTotal.Load())
	writeCounter(&buf, "quiz_jobs_completed_total", "Total quiz queue jobs completed", quizJobsCompletedTotal.Load())
	writeCounter(&buf, "quiz_jobs_failed_total", "Total quiz queue jobs failed", quizJobsFailedTotal.Load())
	writeCounter(&buf, "quiz_jobs_deleted_unrecoverable_total", "Total malformed quiz queue jobs deleted", quizJobsDeletedUnrecoverableTotal.Load())
	writeCounter(&buf, "topic_extraction_runs_total", "Total topic extraction runs", topicExtractionTotal.Load())
	writeCounter(&buf, "heading_candidates_rejected_total", "Total heading candidates rejected as noise", headingsRejectedTotal.Load())
	writeCounter(&buf, "rag_queries_total", "Total RAG search queries", ragQueriesTotal.Load())
	writeCounter(&buf, "rag_cache_hits_total", "Total RAG cache hits", ragCacheHitsTotal.Load())
	writeHistogram(&buf, "quiz_generation_duration_ms", "Quiz generation duration in milliseconds", quizGenDuration.Snapshot())
	writeHistogram(&buf, "rag_search_duration_ms", "RAG search duration in milliseconds", ragDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
