package service

import (
	"context"
	"errors"
	"sync"

	"luni-triage-be/internal/entity"
	"luni-triage-be/pkg/llm"
)

// nopLogger keeps tests quiet.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// fakeUsageRepo is an in-memory GuestUsageRepository.
type fakeUsageRepo struct {
	mu      sync.Mutex
	records map[string]*entity.GuestUsage
	getErr  error
	putErr  error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{records: map[string]*entity.GuestUsage{}}
}

func (r *fakeUsageRepo) Get(_ context.Context, guestId string) (*entity.GuestUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.records[guestId]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsageRepo) Put(_ context.Context, guestId string, usage *entity.GuestUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	cp := *usage
	r.records[guestId] = &cp
	return nil
}

// stubLLM returns canned output per method.
type stubLLM struct {
	chatReply   string
	chatErr     error
	generateOut string
	generateErr error

	chatCalls     int
	generateCalls int
	lastHistory   []llm.Message
	lastPrompt    string
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.chatCalls++
	s.lastHistory = history
	return s.chatReply, s.chatErr
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	s.generateCalls++
	s.lastPrompt = prompt
	return s.generateOut, s.generateErr
}

// stubUploader records uploads.
type stubUploader struct {
	url     string
	err     error
	calls   int
	lastObj string
}

func (u *stubUploader) Upload(_ context.Context, objectName, _ string, _ []byte) (string, error) {
	u.calls++
	u.lastObj = objectName
	if u.err != nil {
		return "", u.err
	}
	return u.url, u.err
}

var errBoom = errors.New("boom")
