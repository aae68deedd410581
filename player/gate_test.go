package player

import (
	"testing"
	"time"
)

func TestGate_EnterLeave(t *testing.T) {
	g := NewGate()
	if !g.Enter() {
		t.Fatal("open gate should admit")
	}
	g.Leave()
	if g.Paused() || g.Closed() {
		t.Error("gate state changed by enter/leave")
	}
}

func TestGate_PauseWaitsForRender(t *testing.T) {
	g := NewGate()
	if !g.Enter() {
		t.Fatal("enter failed")
	}

	done := make(chan struct{})
	go func() {
		g.Pause()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("pause returned while a render was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	g.Leave()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pause did not return after leave")
	}

	if g.Enter() {
		t.Error("enter should fail while paused")
	}
	g.Resume()
	if !g.Enter() {
		t.Error("enter should succeed after resume")
	}
	g.Leave()
}

func TestGate_PausesNest(t *testing.T) {
	g := NewGate()
	g.Pause()
	g.Pause()
	g.Resume()
	if g.Enter() {
		t.Error("one resume should not undo two pauses")
	}
	g.Resume()
	g.Resume()
	if !g.Enter() {
		t.Error("gate should be open after matching resumes")
	}
	g.Leave()
}

func TestGate_Close(t *testing.T) {
	g := NewGate()
	g.Close()
	if g.Enter() {
		t.Error("closed gate should refuse")
	}
	if !g.Closed() {
		t.Error("Closed should report true")
	}
}
