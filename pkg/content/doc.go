// Package content defines the site content model: content types, items and
// the Store interface the export job reads from.
//
// Only public types are exportable. An item is exported when its status is
// "publish". Fixtures (YAML) seed a store with types and items:
//
//	f, err := content.LoadFixture("site.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := f.Import(ctx, store)
package content
