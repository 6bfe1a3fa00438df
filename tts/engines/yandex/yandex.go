// Package yandex synthesizes speech with Yandex SpeechKit v3 over gRPC.
package yandex

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/audio"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	ttsv3 "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultEndpoint is the public SpeechKit endpoint.
const DefaultEndpoint = "tts.api.cloud.yandex.net:443"

// Config configures the Yandex engine.
type Config struct {
	APIKey   string
	FolderID string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Voices is the SpeechKit voice table.
var Voices = []voice.Voice{
	{Name: "alena", Identifier: "alena", LanguageTag: "ru-RU"},
	{Name: "filipp", Identifier: "filipp", LanguageTag: "ru-RU"},
	{Name: "ermil", Identifier: "ermil", LanguageTag: "ru-RU"},
	{Name: "jane", Identifier: "jane", LanguageTag: "ru-RU"},
	{Name: "madirus", Identifier: "madirus", LanguageTag: "ru-RU"},
	{Name: "omazh", Identifier: "omazh", LanguageTag: "ru-RU"},
	{Name: "zahar", Identifier: "zahar", LanguageTag: "ru-RU"},
	{Name: "dasha", Identifier: "dasha", LanguageTag: "ru-RU"},
	{Name: "julia", Identifier: "julia", LanguageTag: "ru-RU"},
	{Name: "lera", Identifier: "lera", LanguageTag: "ru-RU"},
	{Name: "masha", Identifier: "masha", LanguageTag: "ru-RU"},
	{Name: "marina", Identifier: "marina", LanguageTag: "ru-RU"},
	{Name: "alexander", Identifier: "alexander", LanguageTag: "ru-RU"},
	{Name: "kirill", Identifier: "kirill", LanguageTag: "ru-RU"},
	{Name: "anton", Identifier: "anton", LanguageTag: "ru-RU"},
	{Name: "john", Identifier: "john", LanguageTag: "en-US"},
}

// Engine implements a synthesizer backed by SpeechKit.
type Engine struct {
	config Config
	conn   *grpc.ClientConn
	client ttsv3.SynthesizerClient
}

// New connects to SpeechKit.
func New(config Config) (*Engine, error) {
	if config.APIKey == "" || config.FolderID == "" {
		return nil, fmt.Errorf("%w: yandex api key and folder id", tts.ErrMissingConfig)
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	creds := credentials.NewTLS(&tls.Config{})
	conn, err := grpc.NewClient(config.Endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS service: %w", err)
	}

	return newEngine(config, conn), nil
}

func newEngine(config Config, conn *grpc.ClientConn) *Engine {
	if config.Model == "" {
		config.Model = "general"
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Engine{
		config: config,
		conn:   conn,
		client: ttsv3.NewSynthesizerClient(conn),
	}
}

// Name returns "yandex".
func (e *Engine) Name() string { return "yandex" }

// Voices returns the voice table.
func (e *Engine) Voices() []voice.Voice {
	return append([]voice.Voice(nil), Voices...)
}

// Capabilities reports the speed range SpeechKit accepts.
func (e *Engine) Capabilities() tts.Capabilities {
	caps := tts.DefaultCapabilities()
	caps.Rate = tts.Range{Min: 0.1, Max: 3, Step: 0.1, Default: 1}
	caps.RequiresNetwork = true
	return caps
}

// Synthesize streams a WAV utterance and returns its samples.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (audio.Clip, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Api-Key "+e.config.APIKey)
	ctx = metadata.AppendToOutgoingContext(ctx, "x-folder-id", e.config.FolderID)

	name := pickVoice(req)
	log.Debug("yandex synthesis", "voice", name, "speed", req.Rate, "chars", len(req.Text))

	stream, err := e.client.UtteranceSynthesis(ctx, e.buildRequest(req.Text, name, req.Rate))
	if err != nil {
		return audio.Clip{}, tts.NewSynthesisError(errorCode(err), fmt.Errorf("failed to start synthesis: %w", err))
	}

	var wav bytes.Buffer
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audio.Clip{}, tts.NewSynthesisError(errorCode(err), fmt.Errorf("failed to receive audio data: %w", err))
		}
		if chunk := resp.GetAudioChunk(); chunk != nil {
			wav.Write(chunk.GetData())
		}
	}

	clip, err := audio.ParseWAV(wav.Bytes())
	if err != nil {
		return audio.Clip{}, tts.NewSynthesisError("decode-failed", err)
	}
	return clip, nil
}

// Close closes the gRPC connection.
func (e *Engine) Close() error {
	return e.conn.Close()
}

func (e *Engine) buildRequest(text, voiceName string, speed float64) *ttsv3.UtteranceSynthesisRequest {
	req := &ttsv3.UtteranceSynthesisRequest{}
	req.SetModel(e.config.Model)
	req.SetText(text)

	voiceHint := &ttsv3.Hints{}
	voiceHint.SetVoice(voiceName)
	hints := []*ttsv3.Hints{voiceHint}

	if speed > 0 {
		speedHint := &ttsv3.Hints{}
		speedHint.SetSpeed(speed)
		hints = append(hints, speedHint)
	}
	req.SetHints(hints)

	containerAudio := &ttsv3.ContainerAudio{}
	containerAudio.SetContainerAudioType(ttsv3.ContainerAudio_WAV)
	audioSpec := &ttsv3.AudioFormatOptions{}
	audioSpec.SetContainerAudio(containerAudio)
	req.SetOutputAudioSpec(audioSpec)

	req.SetLoudnessNormalizationType(ttsv3.UtteranceSynthesisRequest_LUFS)
	return req
}

// pickVoice returns the SpeechKit voice for req: the explicit voice, else
// the first voice of the language.
func pickVoice(req tts.Request) string {
	if req.Voice != nil {
		for _, v := range Voices {
			if v.Name == req.Voice.Name {
				return v.Identifier
			}
		}
	}
	lang, _, _ := strings.Cut(req.LanguageTag, "-")
	for _, v := range Voices {
		if strings.HasPrefix(strings.ToLower(v.LanguageTag), strings.ToLower(lang)) {
			return v.Identifier
		}
	}
	return Voices[0].Identifier
}

// errorCode maps gRPC status codes onto short provider codes.
func errorCode(err error) string {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return "not-allowed"
	case codes.Unavailable:
		return "network"
	case codes.DeadlineExceeded:
		return "timeout"
	case codes.InvalidArgument:
		return "invalid-argument"
	case codes.ResourceExhausted:
		return "rate-limited"
	case codes.Canceled:
		return "canceled"
	default:
		return "synthesis-failed"
	}
}
