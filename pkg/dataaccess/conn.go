package dataaccess

import (
	"fmt"

	"github.com/Jacobbrewer1/pgslice/pkg/vault"
	"github.com/spf13/viper"
)

// GenerateConnectionStr builds a lib/pq connection string from the viper
// config, taking the credentials from vault secrets when present.
func GenerateConnectionStr(v *viper.Viper, vs vault.Secrets) string {
	user := v.GetString("db.user")
	pass := v.GetString("db.pass")
	if vs != nil {
		if u, ok := vs["username"]; ok {
			user = fmt.Sprint(u)
		}
		if p, ok := vs["password"]; ok {
			pass = fmt.Sprint(p)
		}
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		v.GetString("db.host"),
		v.GetInt("db.port"),
		user,
		pass,
		v.GetString("db.name"),
		v.GetString("db.sslmode"),
	)
}
