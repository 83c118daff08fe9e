package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TestPollEvents_StopsWhenDone 测试主循环退出后事件转发协程不会阻塞在发送上
func TestPollEvents_StopsWhenDone(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer screen.Fini()

	// 无缓冲且无人接收，模拟 run 已经返回
	events := make(chan tcell.Event)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		pollEvents(screen, events, done)
		close(finished)
	}()

	close(done)
	if err := screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
		t.Fatalf("PostEvent failed: %v", err)
	}

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("pollEvents 在 done 关闭后仍然阻塞")
	}
}

// TestPollEvents_Forwards 测试事件被转发到主循环
func TestPollEvents_Forwards(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 1)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(screen, events, done)

	if err := screen.PostEvent(tcell.NewEventInterrupt("clink")); err != nil {
		t.Fatalf("PostEvent failed: %v", err)
	}

	// 初始化可能先产生尺寸事件，只关心中断事件
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			intr, ok := ev.(*tcell.EventInterrupt)
			if !ok {
				continue
			}
			if intr.Data() != "clink" {
				t.Errorf("中断数据 = %v, 期望 clink", intr.Data())
			}
			return
		case <-timeout:
			t.Fatal("没有收到转发的事件")
		}
	}
}
