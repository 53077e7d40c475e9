package consts

// DefaultPriority 未指定优先级时使用，取值范围 1..5 由请求校验保证
const DefaultPriority = 1

// 后台任务的 trace_id 前缀
const (
	SweepJobTracePrefix    = "job-sweep-"
	KafkaIngestTracePrefix = "kafka-ingest-"
)

const (
	IngestSuccessMessage  = "Post received and processed for intelligent forwarding"
	ServiceRunningMessage = "Intelligent Driver Forwarder is running"
)
