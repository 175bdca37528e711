package repository

import sq "github.com/Masterminds/squirrel"

// psql is the shared statement builder, configured for Postgres dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
