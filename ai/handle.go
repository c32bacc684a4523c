package ai

import (
	"context"
	"sync"
)

// Handle is a lazily-initialized, thread-safe holder for the shared embedding
// provider. The underlying model client is created at most once per process;
// concurrent readers share it safely, and teardown is explicit via Close.
//
// Initialization failure is sticky: every subsequent Get returns the same
// error, so a model-load failure surfaces as a hard startup condition rather
// than being masked per request.
type Handle struct {
	factory func() (Provider, error)

	once     sync.Once
	mu       sync.Mutex
	provider Provider
	err      error
	closed   bool
}

// NewHandle creates a Handle around a provider factory. The factory is not
// invoked until the first Get.
func NewHandle(factory func() (Provider, error)) *Handle {
	return &Handle{factory: factory}
}

// Get returns the shared provider, initializing it on first use.
func (h *Handle) Get() (Provider, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHandleClosed
	}
	h.mu.Unlock()

	h.once.Do(func() {
		h.provider, h.err = h.factory()
	})
	return h.provider, h.err
}

// Embedder is a convenience accessor for the shared provider's embedder.
func (h *Handle) Embedder() (Embedder, error) {
	provider, err := h.Get()
	if err != nil {
		return nil, err
	}
	return provider.Embedder(), nil
}

// LazyEmbedder returns an Embedder that defers provider initialization to
// the first embedding call. It lets dependents be wired before the model
// service is reachable.
func (h *Handle) LazyEmbedder() Embedder {
	return &lazyEmbedder{handle: h}
}

type lazyEmbedder struct {
	handle *Handle
}

var _ Embedder = (*lazyEmbedder)(nil)

func (l *lazyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embedder, err := l.handle.Embedder()
	if err != nil {
		return nil, err
	}
	return embedder.EmbedText(ctx, text)
}

func (l *lazyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embedder, err := l.handle.Embedder()
	if err != nil {
		return nil, err
	}
	return embedder.EmbedTexts(ctx, texts)
}

// Close tears down the shared provider. Safe to call when the provider was
// never initialized, and idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.provider != nil {
		return h.provider.Close()
	}
	return nil
}
