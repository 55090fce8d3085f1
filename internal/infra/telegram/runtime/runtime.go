// Package telegramruntime — ожидания, уважающие контекст отмены: фиксированная
// пауза между разрушительными вызовами и случайная пауза между страницами
// выгрузки диалогов.

package telegramruntime

import (
	"context"
	"math/rand/v2"
	"time"

	"telegram-nuke/internal/infra/logger"
)

// Sleep блокирует на d или до отмены ctx. Возвращает ctx.Err(), если ожидание
// прервано. d <= 0 не ждёт, но всё равно проверяет ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WaitRandomTimeMs ждёт случайный интервал из [minMs, maxMs) или до отмены ctx.
// При minMs == maxMs ждёт ровно minMs; некорректные границы логируются и не ждут.
func WaitRandomTimeMs(ctx context.Context, minMs, maxMs int) {
	switch {
	case minMs <= 0:
		logger.Error("WaitRandomTimeMs: wait time <= 0")
		return
	case maxMs < minMs:
		logger.Error("WaitRandomTimeMs: max < min")
		return
	}

	delta := minMs
	if maxMs > minMs {
		delta = rand.IntN(maxMs-minMs) + minMs // #nosec G404
	}
	_ = Sleep(ctx, time.Duration(delta)*time.Millisecond)
}
