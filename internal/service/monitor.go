package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和性能指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors    int64
	MQErrors       int64
	DBErrors       int64
	CheckoutErrors int64
	WorkerErrors   int64

	// 性能统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	WorkerProcessed  int64
	WorkerFailed     int64

	// 时间统计
	LastRedisError   time.Time
	LastMQError      time.Time
	LastDBError      time.Time
	LastCheckoutTime time.Time
	LastWorkerTime   time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordCheckoutRequest 记录一次下单请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录下单成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordCheckoutError 记录下单失败
func (m *Monitor) RecordCheckoutError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutErrors++
}

// RecordWorkerProcessed 记录通知消费成功
func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

// RecordWorkerFailed 记录通知消费失败
func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
	m.WorkerErrors++
	m.LastWorkerTime = time.Now()
}

// Stats 监控快照
type Stats struct {
	RedisErrors      int64  `json:"redis_errors"`
	MQErrors         int64  `json:"mq_errors"`
	DBErrors         int64  `json:"db_errors"`
	CheckoutErrors   int64  `json:"checkout_errors"`
	CheckoutRequests int64  `json:"checkout_requests"`
	CheckoutSuccess  int64  `json:"checkout_success"`
	WorkerProcessed  int64  `json:"worker_processed"`
	WorkerFailed     int64  `json:"worker_failed"`
	LastCheckoutTime string `json:"last_checkout_time,omitempty"`
	LastWorkerTime   string `json:"last_worker_time,omitempty"`
}

// Snapshot 导出当前统计
func (m *Monitor) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Stats{
		RedisErrors:      m.RedisErrors,
		MQErrors:         m.MQErrors,
		DBErrors:         m.DBErrors,
		CheckoutErrors:   m.CheckoutErrors,
		CheckoutRequests: m.CheckoutRequests,
		CheckoutSuccess:  m.CheckoutSuccess,
		WorkerProcessed:  m.WorkerProcessed,
		WorkerFailed:     m.WorkerFailed,
	}
	if !m.LastCheckoutTime.IsZero() {
		s.LastCheckoutTime = m.LastCheckoutTime.Format("2006-01-02 15:04:05")
	}
	if !m.LastWorkerTime.IsZero() {
		s.LastWorkerTime = m.LastWorkerTime.Format("2006-01-02 15:04:05")
	}
	return s
}
