package tts

import (
	"sync"

	"github.com/dgnsrekt/voicedeck/tts/voice"
)

// fakeProvider records every call made by the controller.
type fakeProvider struct {
	mu       sync.Mutex
	voices   []voice.Voice
	speakErr error
	events   chan Event

	spoken  []Request
	pauses  int
	resumes int
	cancels int
}

func newFakeProvider(vs ...voice.Voice) *fakeProvider {
	return &fakeProvider{
		voices: vs,
		events: make(chan Event, 16),
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Voices() []voice.Voice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]voice.Voice(nil), p.voices...)
}

func (p *fakeProvider) setVoices(vs []voice.Voice) {
	p.mu.Lock()
	p.voices = vs
	p.mu.Unlock()
}

func (p *fakeProvider) Speak(req Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spoken = append(p.spoken, req)
	return p.speakErr
}

func (p *fakeProvider) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return nil
}

func (p *fakeProvider) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes++
	return nil
}

func (p *fakeProvider) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancels++
	return nil
}

func (p *fakeProvider) Events() <-chan Event { return p.events }

func (p *fakeProvider) Capabilities() Capabilities { return DefaultCapabilities() }

func (p *fakeProvider) Close() error { return nil }

func (p *fakeProvider) calls() (speaks, pauses, resumes, cancels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.spoken), p.pauses, p.resumes, p.cancels
}

func (p *fakeProvider) lastRequest() Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spoken[len(p.spoken)-1]
}

var testVoices = []voice.Voice{
	{Name: "Microsoft Zira Desktop - English (United States)", LanguageTag: "en-US"},
	{Name: "Microsoft David Desktop - English (United States)", LanguageTag: "en-US"},
	{Name: "Microsoft Huihui Desktop - Chinese (Simplified)", LanguageTag: "zh-CN"},
	{Name: "Google UK English Male", LanguageTag: "en-GB"},
}
