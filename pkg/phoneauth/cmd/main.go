package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrymomot/phoneauth/pkg/config"
	"github.com/dmitrymomot/phoneauth/pkg/logger"
	"github.com/dmitrymomot/phoneauth/pkg/notifications"
	"github.com/dmitrymomot/phoneauth/pkg/phoneauth"
	"github.com/dmitrymomot/phoneauth/pkg/phoneauth/sandbox"
	"github.com/dmitrymomot/phoneauth/pkg/ratelimiter"
	"github.com/dmitrymomot/phoneauth/pkg/redis"
	"github.com/dmitrymomot/phoneauth/pkg/secrets"
	"github.com/dmitrymomot/phoneauth/pkg/uistate"
)

const usage = `commands:
  phone <dial code> <number>   request a code, e.g. "phone +84 0901234567"
  code <digits>                submit the code
  resend                       send the code again
  yes | no                     answer the visible notice
  retry                        abandon the running attempt
  signout                      sign out
  quit                         exit

sandbox numbers (+84): 900000001 auto-verifies, 900000002 is rejected,
900000003 exceeds the quota, 900000004 never answers; any other number
receives the code 123456. Each number may request SANDBOX_QUOTA_CAPACITY
codes before it has to wait.`

func main() {
	if len(os.Args) > 1 && os.Args[1] == "keygen" {
		keygen()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	log := logger.New(logger.WithDevelopment("phoneauth-demo"), logger.WithOutput(os.Stderr))
	err := run(ctx, log)
	stop()
	if err != nil {
		log.Error("demo failed", logger.Error(err))
		os.Exit(1)
	}
}

// keygen prints a key for UISTATE_ENCRYPTION_KEY.
func keygen() {
	key, err := secrets.GenerateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate key:", err)
		os.Exit(1)
	}
	fmt.Println(secrets.EncodeKey(key))
}

func run(ctx context.Context, log *slog.Logger) error {
	cfg, err := phoneauth.LoadConfig()
	if err != nil {
		return fmt.Errorf("load flow config: %w", err)
	}
	var stateCfg uistate.Config
	if err := config.Load(&stateCfg, config.WithPrefix(uistate.EnvPrefix)); err != nil {
		return fmt.Errorf("load state config: %w", err)
	}
	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return fmt.Errorf("load redis config: %w", err)
	}

	backend, err := uistate.Open[phoneauth.AuthUIState](ctx, stateCfg,
		uistate.WithRedisConfig(redisCfg),
		uistate.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer backend.Close()

	var quotaCfg ratelimiter.Config
	if err := config.Load(&quotaCfg, config.WithPrefix("SANDBOX_")); err != nil {
		return fmt.Errorf("load quota config: %w", err)
	}
	quotaStore := ratelimiter.NewMemoryStore()
	defer quotaStore.Close()
	quota, err := ratelimiter.NewBucket(quotaStore, quotaCfg)
	if err != nil {
		return err
	}

	provider := sandbox.New(
		sandbox.WithDelay(time.Second),
		sandbox.WithQuota(quota),
		sandbox.WithLogger(log),
		sandbox.WithNumber(sandbox.Number{Phone: "+84900000001", Behavior: sandbox.AutoVerify}),
		sandbox.WithNumber(sandbox.Number{Phone: "+84900000002", Behavior: sandbox.RejectNumber}),
		sandbox.WithNumber(sandbox.Number{Phone: "+84900000003", Behavior: sandbox.ExceedQuota}),
		sandbox.WithNumber(sandbox.Number{Phone: "+84900000004", Behavior: sandbox.Silent}),
	)
	defer provider.Close()

	sink := notifications.NewBroadcastSink(8, notifications.WithBroadcastSinkLogger(log))
	defer sink.Close()

	flow, err := phoneauth.New(ctx, provider,
		phoneauth.WithConfig(cfg),
		phoneauth.WithLogger(log),
		phoneauth.WithPersistence(backend),
		phoneauth.WithSink(sink),
	)
	if err != nil {
		return err
	}
	defer flow.Close()

	notices := &noticeBoard{}
	go printStates(ctx, flow, provider)
	go printNotices(ctx, sink, notices)

	fmt.Println(usage)
	lines := readLines(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := handle(ctx, flow, sink, notices, line)
			if err != nil {
				fmt.Println("error:", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func handle(ctx context.Context, flow *phoneauth.Flow, sink *notifications.BroadcastSink, notices *noticeBoard, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "phone":
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: phone <dial code> <number>")
		}
		_ = flow.EditPhoneNumber()
		country := phoneauth.Country{DialCode: fields[1]}
		return false, flow.StartVerification(ctx, country, strings.Join(fields[2:], " "))
	case "code":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: code <digits>")
		}
		_ = flow.EditCode()
		return false, flow.SubmitCode(ctx, strings.Join(fields[1:], ""))
	case "resend":
		return false, flow.ResendCode(ctx)
	case "yes", "no":
		id, ok := notices.take()
		if !ok {
			return false, fmt.Errorf("no notice to answer")
		}
		return false, sink.Respond(id, fields[0] == "yes")
	case "retry":
		return false, flow.Retry(ctx)
	case "signout":
		return false, flow.SignOut(ctx)
	case "quit", "exit":
		return true, nil
	default:
		fmt.Println(usage)
		return false, nil
	}
}

func printStates(ctx context.Context, flow *phoneauth.Flow, provider *sandbox.Provider) {
	sub := flow.Subscribe(ctx)
	defer sub.Close()

	for msg := range sub.Receive(ctx) {
		st := msg.Data
		fmt.Printf("[%s] session=%s", st.ActivePhase(), flow.Session().Name())
		switch {
		case st.Request.InProgress:
			fmt.Print(" sending code")
		case st.Verification.InProgress:
			fmt.Print(" verifying")
		}
		if st.Request.IsTimeout || st.Verification.IsTimeout {
			fmt.Print(" (no answer yet)")
		}
		if m := st.Request.ExceptionMessage + st.Verification.ExceptionMessage; m != "" {
			fmt.Printf(" error=%q", m)
		}
		fmt.Println()

		if st.ActivePhase() == phoneauth.PhaseSignedIn {
			if u := provider.CurrentUser(); u != nil {
				fmt.Printf("signed in as %s (%s)\n", u.ID, u.PhoneNumber)
			}
		}
	}
}

func printNotices(ctx context.Context, sink *notifications.BroadcastSink, notices *noticeBoard) {
	sub := sink.Subscribe(ctx)
	defer sub.Close()

	for msg := range sub.Receive(ctx) {
		n := msg.Data.Notice
		switch msg.Data.Kind {
		case notifications.EventShown:
			notices.set(n.ID)
			fmt.Printf("notice: %s", n.Message)
			if n.HasAction() {
				fmt.Printf(" [%s? yes/no]", n.Action.Label)
			}
			fmt.Println()
		case notifications.EventWithdrawn:
			notices.clear(n.ID)
			fmt.Println("notice withdrawn")
		}
	}
}

func readLines(f *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "read input:", err)
		}
	}()
	return lines
}
