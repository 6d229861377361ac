package postgres

// Schema statements executed in order by Migrate. Each statement is
// idempotent so migration can be re-run safely.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS alert_registry (
		key             TEXT PRIMARY KEY,
		authority       TEXT NOT NULL,
		total_alerts    BIGINT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		key             TEXT PRIMARY KEY,
		alert_id        TEXT NOT NULL,
		channel         TEXT NOT NULL,
		fingerprint     BYTEA NOT NULL,
		publisher       TEXT NOT NULL,
		ts              BIGINT NOT NULL,
		priority        SMALLINT NOT NULL,
		impact          SMALLINT NOT NULL,
		delivery_count  BIGINT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_alerts_alert_id ON alerts (alert_id)`,

	`CREATE TABLE IF NOT EXISTS alert_deliveries (
		id              TEXT PRIMARY KEY,
		key             TEXT NOT NULL UNIQUE,
		alert_key       TEXT NOT NULL REFERENCES alerts (key),
		subscriber      TEXT NOT NULL,
		ts              BIGINT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_alert_deliveries_alert_key ON alert_deliveries (alert_key)`,

	`CREATE TABLE IF NOT EXISTS publisher_registry (
		key                 TEXT PRIMARY KEY,
		authority           TEXT NOT NULL,
		mint                TEXT NOT NULL,
		revenue_pool        TEXT NOT NULL,
		treasury            TEXT NOT NULL,
		min_stake           BIGINT NOT NULL,
		publisher_share_bps INTEGER NOT NULL,
		reputation_reward   INTEGER NOT NULL,
		reputation_penalty  INTEGER NOT NULL,
		total_publishers    BIGINT NOT NULL DEFAULT 0,
		total_payouts       BIGINT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS publishers (
		id               TEXT NOT NULL,
		key              TEXT PRIMARY KEY,
		owner            TEXT NOT NULL,
		name             TEXT NOT NULL,
		metadata_uri     TEXT NOT NULL,
		stake            BIGINT NOT NULL,
		stake_vault      TEXT NOT NULL,
		payout_vault     TEXT NOT NULL,
		reputation       INTEGER NOT NULL,
		alerts_submitted BIGINT NOT NULL DEFAULT 0,
		alerts_accepted  BIGINT NOT NULL DEFAULT 0,
		total_earnings   BIGINT NOT NULL DEFAULT 0,
		registered_at    BIGINT NOT NULL,
		active           BOOLEAN NOT NULL,
		slashed          BOOLEAN NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_publishers_owner ON publishers (owner)`,

	`CREATE TABLE IF NOT EXISTS protocol_config (
		key                    TEXT PRIMARY KEY,
		authority              TEXT NOT NULL,
		mint                   TEXT NOT NULL,
		treasury               TEXT NOT NULL,
		revenue_pool           TEXT NOT NULL,
		price_per_alert        BIGINT NOT NULL,
		treasury_fee_bps       INTEGER NOT NULL,
		total_subscribers      BIGINT NOT NULL DEFAULT 0,
		total_alerts_delivered BIGINT NOT NULL DEFAULT 0,
		total_revenue          BIGINT NOT NULL DEFAULT 0,
		created_at             TIMESTAMPTZ NOT NULL,
		updated_at             TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS subscribers (
		id              TEXT NOT NULL,
		key             TEXT PRIMARY KEY,
		owner           TEXT NOT NULL,
		channels        BIGINT NOT NULL,
		balance         BIGINT NOT NULL,
		vault           TEXT NOT NULL,
		alerts_received BIGINT NOT NULL DEFAULT 0,
		joined_at       BIGINT NOT NULL,
		active          BOOLEAN NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_subscribers_owner ON subscribers (owner)`,

	`CREATE TABLE IF NOT EXISTS receipts (
		id             TEXT PRIMARY KEY,
		key            TEXT NOT NULL UNIQUE,
		subscriber_key TEXT NOT NULL REFERENCES subscribers (key),
		subscriber     TEXT NOT NULL,
		fingerprint    BYTEA NOT NULL,
		amount         BIGINT NOT NULL,
		ts             BIGINT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_receipts_subscriber_key ON receipts (subscriber_key)`,
}
