package sqlinline

const translationColumns = `id, content_type, object_id, field_name, language, translated_text,
    source_text, source_language, quality, confidence_score, translation_job_id,
    version, is_current, created_at, updated_at`

const QGetCurrentTranslation = `--sql 0f172d17-9f7f-488b-bf26-85fac2fdf5ea
select ` + translationColumns + `
from translations
where content_type = $1 and object_id = $2 and field_name = $3 and language = $4
  and is_current;
`

const QLockCurrentTranslation = `--sql 296b81c0-9bd3-43eb-bb85-658370e4896a
select id, translated_text, version
from translations
where content_type = $1 and object_id = $2 and field_name = $3 and language = $4
  and is_current
for update;
`

const QDemoteCurrentTranslation = `--sql 0723b8ce-aa0d-45cb-a24f-f070af1f3bf1
update translations
set is_current = false, updated_at = now()
where content_type = $1 and object_id = $2 and field_name = $3 and language = $4
  and is_current;
`

const QInsertTranslation = `--sql d5149eb0-35f1-40e8-9742-f715c5f2bba5
insert into translations (
    id, content_type, object_id, field_name, language, translated_text,
    source_text, source_language, quality, confidence_score, translation_job_id,
    version, is_current
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, true)
returning created_at, updated_at;
`

const QRefreshTranslation = `--sql 831e12e6-152f-4f6b-9b33-624ebde82c69
update translations
set confidence_score = $2, translation_job_id = $3, updated_at = now()
where id = $1;
`
