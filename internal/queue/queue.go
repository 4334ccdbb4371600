// internal/queue/queue.go
package queue

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// QueuedOrder – potwierdzenie eksportu, którego nie udało się zapisać
// w centralnej bazie. Plik PDV już istnieje; wiersz znika dopiero gdy
// późniejsze oflagowanie się powiedzie.
type QueuedOrder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OrderID   int64     `gorm:"index"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Attempts  int       `gorm:"default:0"`
	Status    string    `gorm:"index;default:pending"`
}

func (QueuedOrder) TableName() string { return "queued_orders" }

// Queue – lokalna, trwała kolejka offline na osobnym pliku sqlite,
// niezależna od centralnej bazy (ma przeżyć jej awarię).
type Queue struct {
	DB   *gorm.DB
	Path string
}

func OpenAt(dir string) (*Queue, error) {
	dbPath := filepath.Join(dir, "offline_queue.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open offline queue: %w", err)
	}
	if err := gdb.AutoMigrate(&QueuedOrder{}); err != nil {
		return nil, fmt.Errorf("migrate offline queue: %w", err)
	}
	return &Queue{DB: gdb, Path: dbPath}, nil
}

// Enqueue dokłada wpis. Zwrócony błąd jest tylko do zalogowania –
// lokalna awaria I/O nie może wstrzymać eksportu (log-and-drop).
func (q *Queue) Enqueue(orderID int64, payload []byte) error {
	row := QueuedOrder{OrderID: orderID, Payload: string(payload), Status: "pending"}
	if err := q.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("enqueue order %d: %w", orderID, err)
	}
	return nil
}

// DrainBatch zwraca najstarsze oczekujące wpisy, maksymalnie n.
func (q *Queue) DrainBatch(n int) ([]QueuedOrder, error) {
	var rows []QueuedOrder
	err := q.DB.
		Where("status = ?", "pending").
		Order("created_at ASC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("drain batch: %w", err)
	}
	return rows, nil
}

// MarkResolved usuwa wpis po udanym oflagowaniu.
func (q *Queue) MarkResolved(id uint) error {
	return q.DB.Delete(&QueuedOrder{}, id).Error
}

// MarkFailed podbija licznik prób atomowo po stronie sqlite – z kolejki
// korzystają równolegle orkiestrator i pętla retry.
func (q *Queue) MarkFailed(id uint) error {
	return q.DB.Model(&QueuedOrder{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}

// PendingCount – liczba zaległych wpisów (metryki/panel).
func (q *Queue) PendingCount() (int64, error) {
	var n int64
	err := q.DB.Model(&QueuedOrder{}).Where("status = ?", "pending").Count(&n).Error
	return n, err
}

func (q *Queue) Close() error {
	sqlDB, err := q.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
