package usecase

import (
	"github.com/m-mizutani/appdeck/pkg/domain/model"
	"github.com/m-mizutani/appdeck/pkg/utils/locale"
	"github.com/m-mizutani/appdeck/pkg/utils/urlutil"
)

// Localize projects the catalog entries onto a preference chain, resolving
// icon locators against baseURL. A nil catalog yields no entries.
func Localize(catalog *model.Catalog, baseURL string, chain []string) []model.LocalizedEntry {
	if catalog == nil {
		return []model.LocalizedEntry{}
	}

	entries := make([]model.LocalizedEntry, 0, len(catalog.Entries))
	for _, e := range catalog.Entries {
		le := model.LocalizedEntry{
			ID:          e.ID(),
			Name:        locale.ResolveText(e.Name, chain),
			Summary:     locale.ResolveText(e.Summary, chain),
			DownloadURL: e.DownloadURL,
		}
		if u, err := urlutil.Resolve(baseURL, e.IconName); err == nil {
			le.IconURL = u.String()
		}
		entries = append(entries, le)
	}
	return entries
}
