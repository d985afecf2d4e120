package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"delphi/internal/account/models"
	id "delphi/pkg/domain"
	"delphi/pkg/platform/sentinel"
)

const keyPrefix = "delphi:account:"

// RedisAccountStore keeps each account as a hash under delphi:account:<id>.
type RedisAccountStore struct {
	client redis.UniversalClient
}

func NewRedisAccountStore(client redis.UniversalClient) *RedisAccountStore {
	return &RedisAccountStore{client: client}
}

func accountKey(accountID id.AccountID) string {
	return keyPrefix + accountID.String()
}

// Save replaces the account hash atomically.
func (s *RedisAccountStore) Save(ctx context.Context, account *models.Account) error {
	key := accountKey(account.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"name", account.Name,
			"is_authority", strconv.FormatBool(account.IsAuthority),
			"created_at", account.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}
	return nil
}

func (s *RedisAccountStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	fields, err := s.client.HGetAll(ctx, accountKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", accountID, err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decode account %s created_at: %w", accountID, err)
	}
	authority, err := strconv.ParseBool(fields["is_authority"])
	if err != nil {
		return nil, fmt.Errorf("decode account %s is_authority: %w", accountID, err)
	}
	return &models.Account{
		ID:          accountID,
		Name:        fields["name"],
		IsAuthority: authority,
		CreatedAt:   createdAt,
	}, nil
}
