package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethanbaker/ytchat/internal/llm"
	"github.com/ethanbaker/ytchat/internal/orchestrator"
	"github.com/ethanbaker/ytchat/internal/session"
	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/ethanbaker/ytchat/pkg/logger"
	"github.com/ethanbaker/ytchat/pkg/utils"
)

// Interactive terminal chat against one video, without the HTTP server
func main() {
	cfg := utils.NewConfigFromEnv(".env")
	log := logger.New(cfg)

	prompts, err := llm.LoadPrompts(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to load prompts")
	}

	var opts []transcript.Option
	if cfg.GetBoolWithDefault("TRANSCRIPT_CACHE", true) {
		opts = append(opts, transcript.WithCache(transcript.NewCache(cfg.GetWithDefault("TRANSCRIPT_DIR", "transcripts"))))
	}
	provider := transcript.NewClient(log, opts...)

	orch := orchestrator.New(provider, llm.New(cfg, log), prompts, log)

	store := session.NewStore()
	ctx := context.Background()
	sess, err := store.Create(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to create session")
	}

	in := bufio.NewScanner(os.Stdin)
	readLine := func(prompt string) string {
		fmt.Print(prompt)
		if !in.Scan() {
			os.Exit(0)
		}
		return strings.TrimSpace(in.Text())
	}

	// Credential from environment or prompt
	apiKey := cfg.Get("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = readLine("Gemini API key: ")
	}
	if err := orch.SetCredential(sess, apiKey); err != nil {
		log.WithError(err).Fatal("invalid credential")
	}

	// Load the video
	for {
		url := readLine("YouTube URL: ")
		summary, err := orch.SetVideo(ctx, sess, url)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		if summary.Title != "" {
			fmt.Printf("Loaded %q (%d segments)\n", summary.Title, summary.SegmentCount)
		} else {
			fmt.Printf("Loaded video %s (%d chars of transcript)\n", summary.VideoID, summary.CharCount)
		}
		break
	}

	fmt.Println("Ask about the video. Type 'exit' to quit.")

	for {
		question := readLine("\n> ")
		if question == "" {
			continue
		}
		if question == "exit" {
			break
		}

		stream, err := orch.Ask(ctx, sess, question)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		for stream.Next() {
			fmt.Print(stream.Text())
		}
		fmt.Println()

		if err := stream.Err(); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		stream.Close()
	}
}
