package queue

import (
	"encoding/json"
	"time"

	"directory_backend/internal/directory/intent"

	"github.com/hibiken/asynq"
)

// TaskDirectoryIntent is a single published intent.
const TaskDirectoryIntent = "directory.intent"

// TaskDirectoryIntentBatch is an aggregated batch of intents, produced by
// the worker-side group aggregator. Its payload is a JSON array of intents.
const TaskDirectoryIntentBatch = "directory.intent.batch"

// intentGroup is the aggregation group all intents are enqueued under.
const intentGroup = "intents"

// NewIntentTask wraps one intent as a queue task.
func NewIntentTask(in intent.Intent) (*asynq.Task, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDirectoryIntent, data), nil
}

// ParseIntent decodes a single-intent task payload.
func ParseIntent(task *asynq.Task) (intent.Intent, error) {
	var in intent.Intent
	if err := json.Unmarshal(task.Payload(), &in); err != nil {
		return intent.Intent{}, err
	}
	return in, nil
}

// ParseIntentBatch decodes a batch task payload. An unknown operation value
// inside an element still decodes; the consumer skips it at apply time.
func ParseIntentBatch(task *asynq.Task) ([]intent.Intent, error) {
	var intents []intent.Intent
	if err := json.Unmarshal(task.Payload(), &intents); err != nil {
		return nil, err
	}
	return intents, nil
}

// intentAggregator returns the group aggregator that folds pending intent
// tasks into one batch task, preserving delivery order. Aggregated tasks are
// enqueued fresh by asynq, so the timeout and retry options set at publish
// time do not survive aggregation; the batch task must carry them itself.
// The payload is the raw intent payloads joined into a JSON array, which
// cannot fail: a malformed element survives into the batch and is rejected
// at parse time instead of being dropped here.
func intentAggregator(timeout time.Duration, maxRetry int) asynq.GroupAggregatorFunc {
	return func(group string, tasks []*asynq.Task) *asynq.Task {
		size := 2
		for _, t := range tasks {
			size += len(t.Payload()) + 1
		}
		data := make([]byte, 0, size)
		data = append(data, '[')
		for i, t := range tasks {
			if i > 0 {
				data = append(data, ',')
			}
			data = append(data, t.Payload()...)
		}
		data = append(data, ']')

		return asynq.NewTask(TaskDirectoryIntentBatch, data,
			asynq.Timeout(timeout),
			asynq.MaxRetry(maxRetry),
		)
	}
}
