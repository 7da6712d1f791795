package driftstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/aq-predictor/internal/domain/predictor"
)

// memberSep joins field and label into one sorted-set member.
const memberSep = "\x1f"

// ValkeyStore counts unseen labels in a Valkey sorted set trimmed to the
// maxEntries highest counts after every write.
type ValkeyStore struct {
	client     valkey.Client
	prefix     string
	maxEntries int
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, maxEntries int) *ValkeyStore {
	if prefix == "" {
		prefix = "aq"
	}
	return &ValkeyStore{client: client, prefix: prefix, maxEntries: normalizeMaxEntries(maxEntries)}
}

func (s *ValkeyStore) RecordUnseen(ctx context.Context, field, label string) error {
	if field == "" {
		return nil
	}
	key := s.unseenKey()
	member := encodeMember(truncateLabel(field), truncateLabel(label))
	for _, resp := range s.client.DoMulti(ctx,
		s.client.B().Zincrby().Key(key).Increment(1).Member(member).Build(),
		s.client.B().Zremrangebyrank().Key(key).Start(0).Stop(trimStop(s.maxEntries)).Build(),
	) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) TopUnseen(ctx context.Context, limit int) ([]predictor.UnseenLabel, error) {
	if limit <= 0 {
		limit = 20
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.unseenKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]predictor.UnseenLabel, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			member string
			score  float64
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element
			if member, err = tuple[0].ToString(); err != nil {
				return nil, err
			}
			if score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if member, err = arr[i].ToString(); err != nil {
				return nil, err
			}
			if score, err = arr[i+1].ToFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		field, label := decodeMember(member)
		out = append(out, predictor.UnseenLabel{Field: field, Label: label, Count: int64(score)})
	}
	return out, nil
}

func (s *ValkeyStore) unseenKey() string {
	return fmt.Sprintf("%s:unseen_labels", s.prefix)
}

// trimStop is the ZREMRANGEBYRANK stop index that keeps the top max members.
func trimStop(max int) int64 {
	return -int64(max) - 1
}

func encodeMember(field, label string) string {
	return field + memberSep + label
}

func decodeMember(member string) (string, string) {
	field, label, ok := strings.Cut(member, memberSep)
	if !ok {
		return member, ""
	}
	return field, label
}

var _ predictor.DriftRecorder = (*ValkeyStore)(nil)
