// Package config carries the application defaults. Everything here can be
// overridden by CLI flag or environment variable.
package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultKafkaBrokers is the comma-separated broker list.
	DefaultKafkaBrokers = "localhost:9092"

	// DefaultKafkaGroup is the consumer group the pipeline joins.
	DefaultKafkaGroup = "caseflow"

	// DefaultCaseMutationTopic carries before/after case snapshots.
	DefaultCaseMutationTopic = "caseflow.case-mutations"

	// DefaultChangeRecordTopic carries task and request field changes.
	DefaultChangeRecordTopic = "caseflow.change-records"

	// DefaultDispatchShards is the number of ordered dispatch workers.
	DefaultDispatchShards = 16

	// DefaultDispatchBuffer is the per-shard queue depth.
	DefaultDispatchBuffer = 256
)
