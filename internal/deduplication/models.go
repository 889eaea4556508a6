package deduplication

// Fields of an object event that make up its idempotency key.
var keyFields = []string{"id", "type", "object_id"}
