// Package piper synthesizes speech with the Piper command line tool.
// Voices are the *.onnx models found in a data directory.
package piper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voicedeck/tts"
	"github.com/dgnsrekt/voicedeck/tts/audio"
	"github.com/dgnsrekt/voicedeck/tts/voice"
	"github.com/fsnotify/fsnotify"
)

const modelConfigSuffix = ".onnx.json"

// ErrBinaryNotFound is returned when the piper executable is missing.
var ErrBinaryNotFound = errors.New("piper binary not found")

// Config configures the Piper engine.
type Config struct {
	Binary  string
	DataDir string
	Timeout time.Duration
}

// model is one voice model on disk.
type model struct {
	voice      voice.Voice
	path       string
	sampleRate int
}

// modelConfig is the part of a model's .onnx.json we read.
type modelConfig struct {
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
}

// Engine runs one piper process per utterance.
type Engine struct {
	config  Config
	binary  string
	changed chan struct{}
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	mu     sync.RWMutex
	models []model
}

// New finds the piper binary, scans the data directory and starts
// watching it for added or removed models.
func New(config Config) (*Engine, error) {
	binary := findBinary(config.Binary)
	if binary == "" {
		return nil, fmt.Errorf("%w: %q", ErrBinaryNotFound, config.Binary)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	e := &Engine{
		config:  config,
		binary:  binary,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	e.rescan()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("piper voice watcher unavailable", "error", err)
		return e, nil
	}
	if err := watcher.Add(config.DataDir); err != nil {
		log.Warn("cannot watch piper data dir", "dir", config.DataDir, "error", err)
		_ = watcher.Close()
		return e, nil
	}
	e.watcher = watcher

	e.wg.Add(1)
	go e.watch()

	return e, nil
}

// Name returns "piper".
func (e *Engine) Name() string { return "piper" }

// Voices returns one voice per model.
func (e *Engine) Voices() []voice.Voice {
	e.mu.RLock()
	defer e.mu.RUnlock()

	vs := make([]voice.Voice, len(e.models))
	for i, m := range e.models {
		vs[i] = m.voice
	}
	return vs
}

// VoicesChanged signals after the model directory changed.
func (e *Engine) VoicesChanged() <-chan struct{} {
	return e.changed
}

// Capabilities reports the ranges piper accepts. Pitch is not supported.
func (e *Engine) Capabilities() tts.Capabilities {
	caps := tts.DefaultCapabilities()
	caps.Rate = tts.Range{Min: 0.25, Max: 4, Step: 0.05, Default: 1}
	return caps
}

// Synthesize runs piper on req's text.
func (e *Engine) Synthesize(ctx context.Context, req tts.Request) (audio.Clip, error) {
	m, err := e.pick(req)
	if err != nil {
		return audio.Clip{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, buildArgs(m.path, req.Rate)...)
	cmd.Stdin = strings.NewReader(req.Text + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running piper", "model", m.voice.Name, "rate", req.Rate, "chars", len(req.Text))
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return audio.Clip{}, tts.NewSynthesisError("timeout", err)
		}
		return audio.Clip{}, tts.NewSynthesisError("synthesis-failed",
			fmt.Errorf("piper: %w: %s", err, strings.TrimSpace(stderr.String())))
	}
	if stdout.Len() == 0 {
		return audio.Clip{}, tts.NewSynthesisError("synthesis-failed", audio.ErrEmptyAudio)
	}

	return audio.Clip{PCM: stdout.Bytes(), SampleRate: m.sampleRate, Channels: 1}, nil
}

// Close stops watching the data directory.
func (e *Engine) Close() error {
	close(e.done)
	var err error
	if e.watcher != nil {
		err = e.watcher.Close()
	}
	e.wg.Wait()
	return err
}

// pick chooses the model for req: the explicit voice, else the first model
// of the requested language.
func (e *Engine) pick(req tts.Request) (model, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.models) == 0 {
		return model{}, tts.NewSynthesisError("voice-unavailable", tts.ErrNoVoices)
	}
	if req.Voice != nil {
		for _, m := range e.models {
			if m.voice.Name == req.Voice.Name {
				return m, nil
			}
		}
	}
	for _, m := range e.models {
		if strings.EqualFold(m.voice.LanguageTag, req.LanguageTag) {
			return m, nil
		}
	}
	lang, _, _ := strings.Cut(req.LanguageTag, "-")
	for _, m := range e.models {
		if strings.HasPrefix(strings.ToLower(m.voice.LanguageTag), strings.ToLower(lang)) {
			return m, nil
		}
	}
	return model{}, tts.NewSynthesisError("language-unavailable",
		fmt.Errorf("%w: no piper model for %s", tts.ErrVoiceNotFound, req.LanguageTag))
}

func (e *Engine) watch() {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			return
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, modelConfigSuffix) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				e.rescan()
				select {
				case e.changed <- struct{}{}:
				default:
				}
			}
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("piper voice watcher error", "error", err)
		}
	}
}

func (e *Engine) rescan() {
	models, err := scanModels(e.config.DataDir)
	if err != nil {
		log.Warn("failed to scan piper models", "dir", e.config.DataDir, "error", err)
	}

	e.mu.Lock()
	e.models = models
	e.mu.Unlock()

	log.Debug("piper models scanned", "dir", e.config.DataDir, "count", len(models))
}

// scanModels reads every model config in dir. Configs whose .onnx file is
// missing are skipped.
func scanModels(dir string) ([]model, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+modelConfigSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var models []model
	for _, cfgPath := range paths {
		onnx := strings.TrimSuffix(cfgPath, ".json")
		if _, err := os.Stat(onnx); err != nil {
			continue
		}

		m, err := readModel(cfgPath, onnx)
		if err != nil {
			log.Debug("skipping piper model", "path", cfgPath, "error", err)
			continue
		}
		models = append(models, m)
	}
	return models, nil
}

func readModel(cfgPath, onnx string) (model, error) {
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return model{}, err
	}

	var mc modelConfig
	if err := json.Unmarshal(data, &mc); err != nil {
		return model{}, fmt.Errorf("parse %s: %w", filepath.Base(cfgPath), err)
	}

	name := strings.TrimSuffix(filepath.Base(cfgPath), modelConfigSuffix)
	code := mc.Language.Code
	if code == "" {
		// en_US-lessac-medium
		code, _, _ = strings.Cut(name, "-")
	}

	rate := mc.Audio.SampleRate
	if rate <= 0 {
		rate = 22050
	}

	return model{
		voice: voice.Voice{
			Name:        name,
			Identifier:  onnx,
			LanguageTag: strings.ReplaceAll(code, "_", "-"),
		},
		path:       onnx,
		sampleRate: rate,
	}, nil
}

// buildArgs maps the speech rate onto piper's length scale.
func buildArgs(modelPath string, rate float64) []string {
	args := []string{"--model", modelPath, "--output-raw"}
	if rate > 0 && rate != 1 {
		args = append(args, "--length_scale", strconv.FormatFloat(1/rate, 'f', 3, 64))
	}
	return args
}

func findBinary(name string) string {
	locations := []string{name, "piper", "./piper", "/usr/local/bin/piper", "/usr/bin/piper"}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".local", "bin", "piper"),
			filepath.Join(home, "bin", "piper"),
		)
	}

	for _, loc := range locations {
		if loc == "" {
			continue
		}
		if path, err := exec.LookPath(loc); err == nil {
			return path
		}
	}
	return ""
}
