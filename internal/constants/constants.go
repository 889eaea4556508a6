package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	ShutdownTimeout    = 5 * time.Second
	InitTimeout        = 30 * time.Second
)

const (
	CacheKeyPrefixEvent = "pipelinq:event:"
)

const (
	DefaultMongoDBName        = "pipelinq"
	DefaultActivityCollection = "activities"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

// Where a consumer group without committed offsets starts reading.
const (
	StartOffsetEarliest = "earliest"
	StartOffsetLatest   = "latest"
)

const (
	ServiceNameDispatch   = "dispatch-service"
	ServiceNameManagement = "management-service"
)
