package provision

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rmalloy/keyup/internal/store"
)

// Receipt records what a provisioning run produced. It lives inside the
// credential store and is what `keyup check` reads back.
type Receipt struct {
	Host          string    `yaml:"host"`
	Address       string    `yaml:"address"`
	RemoteUser    string    `yaml:"remote_user"`
	ProvisionedBy string    `yaml:"provisioned_by"`
	ProvisionedAt time.Time `yaml:"provisioned_at"`
	PublicKey     string    `yaml:"public_key"`
}

// writeReceipt drops the receipt into the store. The store's default ACL
// keeps it owner-only like everything else in there.
func writeReceipt(st store.Store, req *Request) error {
	receipt := Receipt{
		Host:          req.HostAlias,
		Address:       req.RemoteAddress,
		RemoteUser:    req.RemoteUser,
		ProvisionedBy: req.LocalUser,
		ProvisionedAt: time.Now().UTC(),
		PublicKey:     st.PublicKeyPath(),
	}

	data, err := yaml.Marshal(receipt)
	if err != nil {
		return err
	}
	return os.WriteFile(st.ReceiptPath(), data, 0o600)
}

// ReadReceipt loads the receipt from a store, if one exists.
func ReadReceipt(st store.Store) (*Receipt, error) {
	data, err := os.ReadFile(st.ReceiptPath())
	if err != nil {
		return nil, err
	}
	var receipt Receipt
	if err := yaml.Unmarshal(data, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
