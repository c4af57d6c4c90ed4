// Package seed bundles the read-only baseline dataset shipped with the
// application. It is the fallback every copy of the data can be rebuilt
// from.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"finboard/internal/domain/entity"
)

//go:embed data/*.json
var files embed.FS

// DefaultContributionRate is used whenever the durable copy carries no rate.
const DefaultContributionRate = 0.1

var load = sync.OnceValue(func() entity.Dataset {
	return entity.Dataset{
		Users:            decode[[]entity.User]("data/users.json"),
		Merchants:        decode[[]entity.Merchant]("data/merchants.json"),
		Purchases:        decode[[]entity.Purchase]("data/purchases.json"),
		Notifications:    decode[[]entity.Notification]("data/notifications.json"),
		Points:           decode[map[string]int]("data/points.json"),
		ContributionRate: DefaultContributionRate,
	}
})

// Dataset returns a deep copy of the seed dataset; callers may mutate it
// freely without affecting later calls.
func Dataset() entity.Dataset {
	return load().Clone()
}

// decode reads one embedded JSON file. The files are compiled into the
// binary, so a decode failure is a build defect, not a runtime condition.
func decode[T any](name string) T {
	raw, err := files.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("seed: read %s: %v", name, err))
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("seed: decode %s: %v", name, err))
	}

	return out
}
