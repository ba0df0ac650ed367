package main

import (
	"context"
	"fmt"

	sqlxrepos "github.com/marcusb/eventwise/storage/database/sqlx"
)

var purgeDraftsFunc = sqlxrepos.PurgeExpiredDrafts // mockable

func (cli *commandLine) purgeDrafts() error {
	purged, err := purgeDraftsFunc(context.Background(), cli.db)
	if err != nil {
		return err
	}
	fmt.Printf("%d expired draft(s) purged\n", purged)
	return nil
}
