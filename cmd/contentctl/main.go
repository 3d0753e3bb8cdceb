// Package main is contentctl, a command line client for the ContentForge API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/contentforge/contentforge/pkg/client"
	"github.com/contentforge/contentforge/pkg/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "contentctl",
		Usage: "Submit and track ContentForge generation jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "ContentForge server base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("CONTENTFORGE_SERVER"),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for authentication",
				Sources: cli.EnvVars("CONTENTFORGE_API_KEY"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Submit an input for content generation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Input type (youtube/audio/text)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "YouTube video URL (type=youtube)",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Raw text to repurpose (type=text)",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Path to an audio file (type=audio)",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Poll until the job reaches a terminal state",
					},
				},
				Action: submitAction,
			},
			{
				Name:  "status",
				Usage: "Show the status of a generation job",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Generation job id",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Poll until the job reaches a terminal state",
					},
				},
				Action: statusAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cmd *cli.Command) (*client.Client, error) {
	apiKey := cmd.String("api-key")
	if apiKey == "" {
		return nil, errors.New("an API key is required (--api-key or CONTENTFORGE_API_KEY)")
	}
	return client.New(cmd.String("server"), apiKey), nil
}

func submitAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	input := client.SubmitInput{InputType: cmd.String("type")}
	switch input.InputType {
	case models.InputTypeYouTube:
		input.InputURL = cmd.String("url")
		if input.InputURL == "" {
			return errors.New("--url is required for type=youtube")
		}
	case models.InputTypeText:
		input.InputText = cmd.String("text")
		if input.InputText == "" {
			return errors.New("--text is required for type=text")
		}
	case models.InputTypeAudio:
		path := cmd.String("file")
		if path == "" {
			return errors.New("--file is required for type=audio")
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening audio file: %w", err)
		}
		defer f.Close()
		input.FileName = f.Name()
		input.FileData = f
	default:
		return fmt.Errorf("unsupported input type %q", input.InputType)
	}

	id, err := c.Submit(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted generation %s\n", id)

	if !cmd.Bool("wait") {
		fmt.Printf("Check progress with: contentctl status --id %s --wait\n", id)
		return nil
	}
	return track(ctx, c, id)
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(cmd.String("id"))
	if err != nil {
		return fmt.Errorf("invalid generation id: %w", err)
	}

	if cmd.Bool("wait") {
		return track(ctx, c, id)
	}

	status, err := c.GetStatus(ctx, id)
	if err != nil {
		return err
	}
	return printStatus(status)
}

func track(ctx context.Context, c *client.Client, id uuid.UUID) error {
	status, err := c.Track(ctx, id, func(p client.Progress) {
		fmt.Printf("[%d/%d] %s (%d%%)\n", p.Step, p.Total, p.Message, p.Percentage)
	})
	if err != nil {
		if errors.Is(err, client.ErrJobFailed) && status != nil {
			fmt.Fprintf(os.Stderr, "Generation failed: %s\n", status.ErrorMessage)
		}
		return err
	}
	return printStatus(status)
}

func printStatus(status *client.Status) error {
	fmt.Printf("Generation %s: %s\n", status.ID, status.Status)
	if status.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", status.ErrorMessage)
	}
	if status.Outputs != nil {
		out, err := json.MarshalIndent(status.Outputs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}
