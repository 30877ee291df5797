package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/convert"
	"github.com/shelfwise/shelfwise/internal/kindle"
	"github.com/shelfwise/shelfwise/internal/mail"
)

var flagSendSubject string

var sendCmd = &cobra.Command{
	Use:   "send <path>",
	Short: "Email a book to the configured Kindle address",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&flagSendSubject, "subject", "", "Custom email subject")
	rootCmd.AddCommand(sendCmd)
}

// newSender wires the delivery adapter with the real converter and
// SMTP transport.
func newSender(cfg *config.Config) *kindle.Sender {
	return kindle.New(kindle.Options{
		From:             cfg.GmailAddress,
		To:               cfg.KindleEmail,
		CredentialSet:    cfg.GmailAppPassword != "",
		SupportedFormats: cfg.DeliveryFormats,
		MaxSizeMB:        float64(cfg.MaxAttachmentSizeMB),
		SendTimeout:      time.Duration(cfg.SendTimeoutSeconds) * time.Second,
		Converter:        convert.NewCalibre(),
		Transport:        mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.GmailAddress, cfg.GmailAppPassword),
	})
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.KindleEmail == "" {
		return fmt.Errorf("kindle_email is not configured; set it in shelfwise.yaml or SHELFWISE_KINDLE_EMAIL")
	}

	sender := newSender(cfg)
	result := sender.Deliver(context.Background(), args[0], flagSendSubject)

	printSection("Send")
	if !result.Success {
		printErr(result.Message)
		return fmt.Errorf("delivery failed")
	}
	printOK(result.Message)
	return nil
}
