package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	recognizerrpc "detox/internal/modules/recognizer/adapter/out/rpc"
	"detox/internal/modules/recognizer/domain"
	recognizerout "detox/internal/modules/recognizer/port/out"
	"detox/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout     = 3 * time.Second
	defaultCallTimeout      = 5 * time.Second
	defaultRecognizeTimeout = 30 * time.Second
)

// GRPCHost starts one recognizer process per call and talks to it over go-plugin gRPC.
type GRPCHost struct {
	logger hclog.Logger
}

func NewGRPCHost(logger hclog.Logger) recognizerout.Host {
	return &GRPCHost{logger: logging.OrNull(logger).Named("recognizer")}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Formats: meta.Formats}, nil
}

func (h *GRPCHost) Recognize(ctx context.Context, manifest domain.Manifest, imagePath string) ([]string, error) {
	client, closeFn, err := h.connect(ctx, manifest, defaultStartTimeout)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultRecognizeTimeout)
	defer cancel()
	started := time.Now()
	response, err := client.Recognize(callCtx, &recognizerrpc.RecognizeRequest{ImagePath: imagePath})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRecognizerTimeout, manifest.Name)
		}
		return nil, fmt.Errorf("recognize %s: %w", imagePath, err)
	}
	h.logger.Debug("recognized", "recognizer", manifest.Name, "tokens", len(response.Tokens), "elapsed", time.Since(started))
	return response.Tokens, nil
}

func (h *GRPCHost) connect(_ context.Context, manifest domain.Manifest, startTimeout time.Duration) (recognizerrpc.RecognizerClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  recognizerrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          recognizerrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           h.logger.With("recognizer", manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start recognizer client: %w", err)
	}
	raw, err := rpcClient.Dispense(recognizerrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense recognizer: %w", err)
	}
	typed, ok := raw.(recognizerrpc.RecognizerClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("recognizer rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
