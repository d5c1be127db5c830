package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has any effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 ID for a conversation turn.
// Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}

// NewString generates an ID in decimal form, used for request IDs that are
// echoed back to callers and stored in turn metadata.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
