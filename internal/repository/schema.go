package repository

// Schema returns the idempotent DDL for all wellpulse tables. Daily logs
// and predictions deduplicate on their version column via
// ReplacingMergeTree, so writes are simple inserts and reads use FINAL.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS daily_logs (
			user_id    String,
			date_key   String,
			mood_score Nullable(Float64),
			sleep_hours Nullable(Float64),
			steps      Nullable(Float64),
			stress     Nullable(Float64),
			updated_at DateTime64(3, 'UTC')
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY (user_id, date_key)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			user_id       String,
			date_key      String,
			p_today       Nullable(Float64),
			p_3d          Nullable(Float64),
			confidence    String,
			model_version String,
			contributions String,
			advices       String,
			generated_at  DateTime64(3, 'UTC')
		) ENGINE = ReplacingMergeTree(generated_at)
		ORDER BY (user_id, date_key)`,

		`CREATE TABLE IF NOT EXISTS model_status (
			user_id             String,
			days_collected      UInt32,
			days_required       UInt32,
			ready               UInt8,
			unhealthy_count     UInt32,
			recent_missing_rate Float64,
			model_kind          String,
			confidence          String,
			updated_at          DateTime64(3, 'UTC')
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY user_id`,
	}
}
