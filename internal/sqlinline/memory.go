package sqlinline

const QMemoryGetAndTouch = `--sql 87b3be52-b81b-4486-a90e-d67850be7e9a
update translation_memory
set usage_count = usage_count + 1, updated_at = now()
where source_text_hash = $1 and source_language = $2 and target_language = $3
returning id, source_text_hash, source_language, target_language,
    translated_text, usage_count, confidence_score, created_at, updated_at;
`

const QMemoryUpsert = `--sql 51b2bef0-5b5c-4a14-b69f-8c7277a042d0
insert into translation_memory (
    id, source_text_hash, source_language, target_language,
    translated_text, usage_count, confidence_score
) values ($1, $2, $3, $4, $5, 1, $6)
on conflict (source_text_hash, source_language, target_language) do update
set translated_text = excluded.translated_text,
    confidence_score = excluded.confidence_score,
    updated_at = now();
`
