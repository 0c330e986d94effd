package metric

import (
	"context"
	"time"

	"potluck/src-server/model"
	"potluck/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Response)(nil)).
		Where("id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
