package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/retailpos/backend/internal/domain/credit"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SMSNotifier delivers credit alerts through an HTTP SMS gateway. A
// disabled gateway, a customer without a phone number or an opted-out
// customer is a silent no-op, never an error.
type SMSNotifier struct {
	cfg    config.NotifyConfig
	client *http.Client
	logger *zap.Logger
}

// NewSMSNotifier creates a new SMSNotifier
func NewSMSNotifier(cfg config.NotifyConfig, logger *zap.Logger) *SMSNotifier {
	return &SMSNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// NotifyCreditAlert sends the near-limit warning as an SMS
func (n *SMSNotifier) NotifyCreditAlert(ctx context.Context, alert credit.Alert) error {
	message := fmt.Sprintf(
		"Dear %s, your store credit stands at %s of your %s limit (%s%%). Please arrange a payment.",
		alert.CustomerName,
		alert.Balance.StringFixed(2),
		alert.Limit.StringFixed(2),
		alert.Percent.StringFixed(1),
	)
	n.logger.Info("credit alert raised",
		zap.String("customer", alert.CustomerName),
		zap.String("percent", alert.Percent.StringFixed(1)),
	)

	if !n.cfg.Enabled || n.cfg.GatewayURL == "" {
		return nil
	}
	if alert.Phone == "" || !alert.SMSOptIn {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      alert.Phone,
		"from":    n.cfg.Sender,
		"message": message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
