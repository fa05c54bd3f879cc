package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/psouza/gleandesk/internal/config"
	"github.com/psouza/gleandesk/internal/feedback"
	"github.com/psouza/gleandesk/internal/glean"
	"github.com/psouza/gleandesk/internal/zendesk"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bridge status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <ticket-id> <positive|negative>",
	Short: "Relay agent feedback for a ticket's suggested answers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendFeedback(args[0], args[1])
	},
}

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List Zendesk ticket forms and their routing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listForms()
	},
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return err
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Zendesk", "%s.zendesk.com (%s)", cfg.Zendesk.Subdomain, cfg.Zendesk.Email)
	printStatus("Glean chat", "%s", cfg.Glean.ChatURL)
	printStatus("Default app", "%s", cfg.Routing.DefaultApplicationID)
	printStatus("Form routes", "%d", len(cfg.Routing.FormApplications))
	printStatus("Token store", "%s", cfg.TokenStore.Backend)
	printStatus("Workers", "%d (queue %d)", cfg.Worker.Count, cfg.Worker.QueueSize)
	if cfg.Note.DryRun {
		printWarning("dry run is enabled, notes will not be posted")
	}
	return nil
}

func sendFeedback(ticketID, sentiment string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tokens, err := openTokenStore(cfg)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}
	defer tokens.Close()

	gleanClient := glean.NewClient(cfg.Glean.ChatURL, cfg.Glean.FeedbackURL, cfg.Glean.Token, cfg.Glean.Timeout, cfg.Glean.StreamTimeout)
	relay := feedback.NewRelay(tokens, gleanClient)

	sent, err := relay.Relay(context.Background(), ticketID, sentiment)
	if errors.Is(err, feedback.ErrNoTokens) {
		printWarning("no tracking token stored for ticket %s", ticketID)
		return err
	}
	if err != nil {
		printError("relaying feedback: %v", err)
		return err
	}

	printSuccess("feedback sent for %d token(s) of ticket %s", sent, ticketID)
	return nil
}

func listForms() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := zendesk.NewClient(cfg.Zendesk.Subdomain, cfg.Zendesk.Email, cfg.Zendesk.APIToken, cfg.Zendesk.Timeout)
	forms, err := client.ListTicketForms(context.Background())
	if err != nil {
		printError("listing ticket forms: %v", err)
		return err
	}

	for _, form := range forms {
		route := cfg.Routing.FormApplications[fmt.Sprintf("%d", form.ID)]
		if route == "" {
			route = cfg.Routing.DefaultApplicationID + " (default)"
		}
		state := "active"
		if !form.Active {
			state = "inactive"
		}
		printStatus(fmt.Sprintf("%d", form.ID), "%s [%s] -> %s", form.Name, state, route)
	}
	return nil
}
