// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"expvar"
	"strings"
	"sync"
	"time"
)

var (
	initOnce sync.Once

	vectorQueryTotal     *expvar.Int
	vectorQueryFailures  *expvar.Int
	vectorQueryLatencyMS *expvar.Int

	embedBatchTotal *expvar.Int
	embedItemsTotal *expvar.Int

	ingestDocsTotal   *expvar.Int
	ingestChunksTotal *expvar.Int

	analysisRunTotal     *expvar.Map
	analysisRunLatencyMS *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		vectorQueryTotal = expvar.NewInt("css_vector_query_total")
		vectorQueryFailures = expvar.NewInt("css_vector_query_failures")
		vectorQueryLatencyMS = expvar.NewInt("css_vector_query_latency_ms")

		embedBatchTotal = expvar.NewInt("css_embed_batches_total")
		embedItemsTotal = expvar.NewInt("css_embed_items_total")

		ingestDocsTotal = expvar.NewInt("css_ingest_docs_total")
		ingestChunksTotal = expvar.NewInt("css_ingest_chunks_total")

		analysisRunTotal = expvar.NewMap("css_analysis_runs_total")
		analysisRunLatencyMS = expvar.NewMap("css_analysis_run_latency_ms")
	})
}

func RecordVectorQuery(failed bool, duration time.Duration) {
	ensureInit()
	vectorQueryTotal.Add(1)
	if failed {
		vectorQueryFailures.Add(1)
	}
	if duration > 0 {
		vectorQueryLatencyMS.Add(duration.Milliseconds())
	}
}

func RecordEmbedBatch(items int) {
	ensureInit()
	if items <= 0 {
		return
	}
	embedBatchTotal.Add(1)
	embedItemsTotal.Add(int64(items))
}

func RecordIngest(docs, chunks int) {
	ensureInit()
	if docs > 0 {
		ingestDocsTotal.Add(int64(docs))
	}
	if chunks > 0 {
		ingestChunksTotal.Add(int64(chunks))
	}
}

func RecordAnalysisRun(intent string, duration time.Duration) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(intent))
	if key == "" {
		key = "unknown"
	}
	analysisRunTotal.Add(key, 1)
	if duration > 0 {
		analysisRunLatencyMS.Add(key, duration.Milliseconds())
	}
}
