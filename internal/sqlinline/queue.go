package sqlinline

const QEnqueueJob = `--sql 622696bd-f950-4489-99e7-75e5930b1bd8
insert into translation_queue (job_id, run_at)
values ($1, now() + ($2::bigint * interval '1 second'));
`

const QClaimDueJob = `--sql bd7cc552-4ba4-45b2-bcf0-a5c45c3f1823
with next_entry as (
    select id, job_id
    from translation_queue
    where run_at <= now()
    order by run_at asc
    for update skip locked
    limit 1
)
delete from translation_queue q
using next_entry
where q.id = next_entry.id
returning next_entry.job_id;
`

const QRequeueRetryableFailed = `--sql db4fcda7-7748-484e-b0c1-e201076cd770
update translation_jobs
set status = 'pending', retry_count = retry_count + 1
where status = 'failed' and retry_count < max_retries
returning id;
`
