//go:build !windows

package integration

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/ghost-operator/internal/hid"
	"github.com/stigoleg/ghost-operator/internal/keepalive"
	"github.com/stigoleg/ghost-operator/internal/settings"
)

const helperEnv = "GHOSTOP_SIGNAL_HELPER"

// TestSignalHelper is the child process of TestSignalShutdown. It runs a
// keeper until a shutdown signal arrives and reports how it stopped.
func TestSignalHelper(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		t.Skip("helper process only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	rec := &hid.Recorder{}
	k := keepalive.New(keepalive.Options{Settings: settings.Defaults(), Sink: rec, Seed: 1})
	cleanup := keepalive.NewCleanupManager(time.Second, nil)
	cleanup.RegisterFunc("keeper", func() error { return k.StopWithTimeout(time.Second) })
	cleanup.Register("sink", rec)

	if err := k.StartIndefinite(); err != nil {
		fmt.Println("start failed:", err)
		os.Exit(2)
	}
	fmt.Println("ready")

	<-ctx.Done()
	if errs := cleanup.Execute(); len(errs) > 0 {
		fmt.Println("cleanup failed:", errs)
		os.Exit(3)
	}
	fmt.Printf("stopped running=%v closed=%v\n", k.IsRunning(), rec.Closed())
	os.Exit(0)
}

func TestSignalShutdown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping helper process test in short mode")
	}

	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT} {
		t.Run(sig.String(), func(t *testing.T) {
			cmd := exec.Command(os.Args[0], "-test.run=^TestSignalHelper$")
			cmd.Env = append(os.Environ(), helperEnv+"=1")
			stdout, err := cmd.StdoutPipe()
			require.NoError(t, err)
			require.NoError(t, cmd.Start())

			lines := make(chan string, 8)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(stdout)
				for sc.Scan() {
					lines <- sc.Text()
				}
			}()

			waitLine(t, lines, "ready")
			require.NoError(t, cmd.Process.Signal(sig))
			waitLine(t, lines, "stopped running=false closed=true")
			for range lines {
			}
			assert.NoError(t, cmd.Wait())
		})
	}
}

func waitLine(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "helper exited before printing %q", want)
			if strings.Contains(line, want) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}
