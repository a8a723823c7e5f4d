package store

import (
	"fmt"

	"github.com/fairflowapp/fairflow/models"
)

// Authoritative key set. Legacy ffv24_tasks_* variants may exist from
// prior versions; they are purged during reset but never written.
const (
	KeyCatalog        = "ff_tasks_catalog_v1"
	KeyAlertWindows   = "ff_tasks_alert_windows_v1"
	KeyAutoResetState = "ff_tasks_auto_reset_state_v1"
	KeyUsers          = "ff_users_v1"
	KeySettings       = "ffv24_settings"
	KeyLog            = "ffv24_log"
	KeyResetTokens    = "ff_pin_reset_tokens_v1"
)

// Bucket is one of the three per-tab task lists.
type Bucket string

const (
	BucketActive  Bucket = "active"
	BucketPending Bucket = "pending"
	BucketDone    Bucket = "done"
)

// TasksKey builds the storage key for a tab's bucket list.
func TasksKey(tab models.Tab, bucket Bucket) string {
	return fmt.Sprintf("ff_tasks_%s_%s_v1", tab, bucket)
}

// legacyTasksKeys returns the known legacy key variants for a tab's bucket.
func legacyTasksKeys(tab models.Tab, bucket Bucket) []string {
	return []string{
		fmt.Sprintf("ffv24_tasks_%s_%s_v1", tab, bucket),
		fmt.Sprintf("ffv24_tasks_%s_%s", tab, bucket),
	}
}
