package sqlinline

const QInsertAPILog = `--sql fde272ef-90dc-49e8-a784-e8c27b3d4734
insert into translation_api_logs (
    id, endpoint, source_language, target_language, character_count,
    success, response_time, status_code, error_message, cost_estimate
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

const QAPILogSummary = `--sql 0ed01120-4d47-490a-bb14-8af92c10e068
select count(*),
    count(*) filter (where success),
    count(*) filter (where not success),
    coalesce(sum(cost_estimate), 0),
    coalesce(avg(response_time), 0)
from translation_api_logs;
`
