// Command sidecar is a reference recognizer. It returns the lines of the text
// file stored next to the image (<image>.txt) as tokens, one per line.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	recognizerrpc "detox/internal/modules/recognizer/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *recognizerrpc.Empty) (*recognizerrpc.Metadata, error) {
	return &recognizerrpc.Metadata{
		Name:    "sidecar",
		Version: "1.0.0",
		Formats: []string{"png", "jpg", "jpeg"},
	}, nil
}

func (s *server) Recognize(_ context.Context, in *recognizerrpc.RecognizeRequest) (*recognizerrpc.RecognizeResponse, error) {
	if strings.TrimSpace(in.ImagePath) == "" {
		return nil, fmt.Errorf("image path is required")
	}
	f, err := os.Open(in.ImagePath + ".txt")
	if err != nil {
		return nil, fmt.Errorf("open sidecar text: %w", err)
	}
	defer f.Close()

	tokens := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			tokens = append(tokens, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sidecar text: %w", err)
	}
	return &recognizerrpc.RecognizeResponse{Tokens: tokens}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: recognizerrpc.HandshakeConfig,
		Plugins:         recognizerrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
