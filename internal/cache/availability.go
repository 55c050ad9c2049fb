// Package cache guarda respostas de disponibilidade no Redis. Toda
// escrita que mexe na agenda do barbeiro (criação, cancelamento,
// conclusão, remarcação) invalida o dia inteiro.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domain "github.com/c50bossio/6fb-booking-sub003/internal/domain/appointment"
	"github.com/c50bossio/6fb-booking-sub003/internal/config"
)

const availabilityTTL = 2 * time.Minute

func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Availability é seguro com rdb nil: vira no-op e a API segue
// respondendo direto do banco.
type Availability struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewAvailability(rdb *redis.Client, log *zap.Logger) *Availability {
	if log == nil {
		log = zap.NewNop()
	}
	return &Availability{rdb: rdb, log: log}
}

func availabilityKey(barberID, productID uint, date string) string {
	return fmt.Sprintf("availability:%d:%d:%s", barberID, productID, date)
}

func dayPattern(barberID uint, date string) string {
	return fmt.Sprintf("availability:%d:*:%s", barberID, date)
}

func (a *Availability) Get(ctx context.Context, barberID, productID uint, date string) ([]domain.TimeSlot, bool) {
	if a.rdb == nil {
		return nil, false
	}

	raw, err := a.rdb.Get(ctx, availabilityKey(barberID, productID, date)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (a *Availability) Set(ctx context.Context, barberID, productID uint, date string, slots []domain.TimeSlot) {
	if a.rdb == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := a.rdb.Set(ctx, availabilityKey(barberID, productID, date), raw, availabilityTTL).Err(); err != nil {
		a.log.Warn("availability cache set failed", zap.Error(err))
	}
}

// InvalidateDay remove todas as entradas do barbeiro no dia,
// independentemente do serviço consultado.
func (a *Availability) InvalidateDay(ctx context.Context, barberID uint, day time.Time) {
	if a.rdb == nil {
		return
	}

	pattern := dayPattern(barberID, day.Format("2006-01-02"))

	keys, err := a.rdb.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}

	if err := a.rdb.Del(ctx, keys...).Err(); err != nil {
		a.log.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
