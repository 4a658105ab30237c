// file: internals/features/subscription/service/midtrans.go
package service

import (
	"fmt"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapAPI = kontrak tipis di atas Midtrans Snap supaya client bisa
// di-inject (test memakai fake, runtime memakai snap.Client asli).
type SnapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type PaymentService struct {
	client SnapAPI
}

// NewPaymentService membuat service dengan snap.Client asli.
// serverKey kosong = pembayaran nonaktif (CreateSnapTransaction akan error).
func NewPaymentService(serverKey string, production bool) *PaymentService {
	if serverKey == "" {
		return &PaymentService{}
	}
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &PaymentService{client: &client}
}

// NewPaymentServiceWithClient untuk injeksi client custom.
func NewPaymentServiceWithClient(client SnapAPI) *PaymentService {
	return &PaymentService{client: client}
}

func (s *PaymentService) Enabled() bool { return s.client != nil }

// BuildOrderID menyisipkan kode periode (M/Y) supaya webhook tahu panjang
// cycle yang harus diterapkan tanpa kolom tambahan.
func BuildOrderID(periodCode string, instituteID string) string {
	short := instituteID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("SUB-%s-%s-%d", periodCode, short, time.Now().Unix())
}

// CycleDurationFromOrderID: M = 30 hari, Y = 365 hari.
func CycleDurationFromOrderID(orderID string) time.Duration {
	if len(orderID) >= 5 && orderID[:5] == "SUB-Y" {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// CreateSnapTransaction membuat transaksi Snap dan mengembalikan token +
// redirect URL untuk halaman pembayaran.
func (s *PaymentService) CreateSnapTransaction(orderID string, grossAmount int64, customerName, customerEmail string) (string, string, error) {
	if s.client == nil {
		return "", "", fmt.Errorf("pembayaran nonaktif: MIDTRANS_SERVER_KEY belum diset")
	}
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
	}
	resp, err := s.client.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}
