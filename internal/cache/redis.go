package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avemarin/clinicbook/config"
	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	doctorsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, doctorsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		doctorsTTL: doctorsTTL,
	}
}

func (c *RedisCache) GetDoctors(ctx context.Context) ([]domain.Doctor, error) {
	data, err := c.client.Get(ctx, doctorsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var doctors []domain.Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *RedisCache) SetDoctors(ctx context.Context, doctors []domain.Doctor) error {
	payload, err := json.Marshal(doctors)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, doctorsKey(), payload, c.doctorsTTL).Err()
}

// InvalidateDoctors drops the directory listing after an approval or an
// inventory change so stale availability is bounded by the TTL at worst.
func (c *RedisCache) InvalidateDoctors(ctx context.Context) error {
	return c.client.Del(ctx, doctorsKey()).Err()
}

// AcquireSlotLock takes a short-lived hold on one (doctor, day, hour) slot
// before the database decides ownership. SetNX makes the hold first-wins.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, doctorEmail, day, hour string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(doctorEmail, day, hour), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, doctorEmail, day, hour string) error {
	return c.client.Del(ctx, slotLockKey(doctorEmail, day, hour)).Err()
}

func doctorsKey() string {
	return "cache:doctors"
}

func slotLockKey(doctorEmail, day, hour string) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", doctorEmail, day, hour)
}
