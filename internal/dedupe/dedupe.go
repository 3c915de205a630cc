package dedupe

// Package dedupe provides the shared singleflight group used to deduplicate
// concurrent match settlement requests. Both clients of a battle report the
// same result; using a centralized singleflight.Group ensures only one
// settlement runs for a given match key while the other caller waits for it.

import "golang.org/x/sync/singleflight"

// SettlementGroup deduplicates battle settlement requests keyed by the
// canonical match key (e.g. "ana|jon").
var SettlementGroup singleflight.Group
