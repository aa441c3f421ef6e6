package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	"github.com/killbill/kbcli/v3/kbclient"
	"github.com/killbill/kbcli/v3/kbclient/account"
	"github.com/killbill/kbcli/v3/kbclient/nodes_info"
	"github.com/killbill/kbcli/v3/kbcommon"
	"github.com/killbill/kbcli/v3/kbmodel"
	"github.com/samber/lo"
	"go.lumeweb.com/checkout-bridge/internal/config"
)

const createdBy = "checkout-bridge"

var ErrAccountNotFound = errors.New("killbill account not found")

type KillBillRepository struct {
	api *kbclient.KillBill
}

// NewKillBillClient builds an API client authenticated with both the tenant
// key pair and basic auth.
func NewKillBillClient(cfg config.KillBillConfig) *kbclient.KillBill {
	trp := httptransport.New(cfg.APIServer, "", nil)
	trp.Producers["text/xml"] = runtime.TextProducer()
	trp.Debug = false

	authWriter := runtime.ClientAuthInfoWriterFunc(func(r runtime.ClientRequest, _ strfmt.Registry) error {
		encoded := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		if err := r.SetHeaderParam("Authorization", "Basic "+encoded); err != nil {
			return err
		}
		if err := r.SetHeaderParam("X-KillBill-ApiKey", cfg.APIKey); err != nil {
			return err
		}
		return r.SetHeaderParam("X-KillBill-ApiSecret", cfg.APISecret)
	})

	return kbclient.New(trp, strfmt.Default, authWriter, kbclient.KillbillDefaults{
		CreatedBy: lo.ToPtr(createdBy),
	})
}

func NewKillBillRepository(api *kbclient.KillBill) *KillBillRepository {
	return &KillBillRepository{api: api}
}

// GetAccountByEmail looks the customer up by external key, which is the
// customer's email address.
func (r *KillBillRepository) GetAccountByEmail(ctx context.Context, email string) (*kbmodel.Account, error) {
	resp, err := r.api.Account.GetAccountByKey(ctx, &account.GetAccountByKeyParams{
		ExternalKey: email,
	})
	if err != nil {
		var kbErr *kbcommon.KillbillError
		if errors.As(err, &kbErr) && kbErr.HTTPCode == 404 {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if resp == nil || resp.Payload == nil {
		return nil, ErrAccountNotFound
	}

	return resp.Payload, nil
}

func (r *KillBillRepository) CreateAccount(ctx context.Context, email, name string) error {
	_, err := r.api.Account.CreateAccount(ctx, &account.CreateAccountParams{
		Body: &kbmodel.Account{
			ExternalKey: email,
			Email:       email,
			Name:        name,
		},
	})
	return err
}

// Ping fails unless at least one Kill Bill node answers.
func (r *KillBillRepository) Ping(ctx context.Context) error {
	resp, err := r.api.NodesInfo.GetNodesInfo(ctx, &nodes_info.GetNodesInfoParams{})
	if err != nil {
		return fmt.Errorf("failed to connect to KillBill: %w", err)
	}

	if resp == nil || len(resp.Payload) == 0 {
		return errors.New("failed to connect to KillBill: no nodes")
	}

	return nil
}
