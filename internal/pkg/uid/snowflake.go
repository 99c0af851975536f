package uid

import (
	"errors"
	"hash/fnv"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// ErrInvalidNode is returned when the configured node id is outside 0..1023.
var ErrInvalidNode = errors.New("uid: snowflake node must be between 0 and 1023")

// Snowflake generates int64 IDs from a bwmarrin/snowflake node.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator for node. A negative node derives one from
// SNOWFLAKE_NODE, or from the hostname when that variable is unset.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		node = nodeFromEnv()
	}
	if node > 1023 {
		return nil, ErrInvalidNode
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func nodeFromEnv() int64 {
	if v, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64); err == nil && v >= 0 && v <= 1023 {
		return v
	}

	host, err := os.Hostname()
	if err != nil {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(host))
	return int64(h.Sum32() % 1024)
}
