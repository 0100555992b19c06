package sqlinline

const QInsertJob = `--sql dbdc88af-aa7c-45f5-9383-678355ff80ea
insert into translation_jobs (
    id, content_type, object_id, field_name, source_language, original_text,
    status, target_languages, completed_languages, failed_languages,
    total_characters, api_calls_count, retry_count, max_retries, error_message
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

const jobColumns = `id, content_type, object_id, field_name, source_language, original_text,
    status, target_languages, completed_languages, failed_languages,
    total_characters, api_calls_count, processing_time, retry_count, max_retries,
    error_message, created_at, started_at, completed_at`

const QGetJob = `--sql 38fab454-aee3-4306-8d71-48cab336ffe7
select ` + jobColumns + `
from translation_jobs
where id = $1;
`

const QBeginProcessing = `--sql 622535b3-d921-49e1-8292-845db9afd3d9
update translation_jobs
set status = 'processing', started_at = now()
where id = $1 and status = 'pending'
returning ` + jobColumns + `;
`

const QFinishJob = `--sql fe4c861f-2db4-45b9-9107-e6b2585c526d
update translation_jobs
set status = $2,
    completed_languages = $3,
    failed_languages = $4,
    api_calls_count = $5,
    error_message = $6,
    processing_time = $7,
    completed_at = case when $2 in ('completed', 'failed', 'partial') then now() else completed_at end
where id = $1;
`

const QResetJobForRetry = `--sql e869e140-7a34-4724-82a7-2fc47635a824
update translation_jobs
set status = 'pending',
    retry_count = $2,
    error_message = $3,
    started_at = null
where id = $1;
`

const QFindActiveJob = `--sql 534a4253-d841-462d-bc88-2aec50aae172
select ` + jobColumns + `
from translation_jobs
where content_type = $1 and object_id = $2 and field_name = $3
  and status in ('pending', 'processing')
order by created_at desc
limit 1;
`

const QCountJobsByStatus = `--sql 780223f1-b47b-4d9b-84a6-d0d25507409a
select status, count(*)
from translation_jobs
group by status;
`
