package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/zhouzirui/z-chat/backend/internal/config"
	"github.com/zhouzirui/z-chat/backend/internal/service/relay"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	mode := flag.String("mode", "relay", "relay: POST to a running relay; direct: call EmailJS with local credentials")
	target := flag.String("url", "http://localhost:5000/send-email", "relay endpoint for -mode=relay")
	name := flag.String("name", "Relay Tester", "from_name")
	email := flag.String("email", "tester@example.com", "from_email")
	message := flag.String("message", "hello from relaytester", "message body")
	timeout := flag.Duration("timeout", 15*time.Second, "request timeout")
	flag.Parse()

	sub := relay.Submission{Name: *name, Email: *email, Message: *message}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var (
		status int
		body   []byte
		err    error
	)
	switch *mode {
	case "relay":
		status, body, err = viaRelay(ctx, *target, sub)
	case "direct":
		status, body, err = direct(ctx, sub)
	default:
		flag.Usage()
		log.Fatal("use -mode=relay or -mode=direct")
	}

	report(status, body, err)
	if err != nil || status != http.StatusOK {
		os.Exit(1)
	}
}

func viaRelay(ctx context.Context, url string, sub relay.Submission) (int, []byte, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func direct(ctx context.Context, sub relay.Submission) (int, []byte, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, nil, fmt.Errorf("load configuration: %w", err)
	}

	data, err := relay.NewClient(cfg.Relay, nil).Send(ctx, sub)
	var upErr *relay.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusCode, upErr.Body, nil
	}
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, data, nil
}

func report(status int, body []byte, err error) {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	if err != nil {
		fmt.Printf("%s %v\n", bad("ERROR"), err)
		return
	}

	label := ok(fmt.Sprintf("%d", status))
	if status != http.StatusOK {
		label = bad(fmt.Sprintf("%d", status))
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") != nil {
		pretty.Reset()
		pretty.Write(body)
	}
	fmt.Printf("%s %s\n%s\n", label, http.StatusText(status), dim(pretty.String()))
}
