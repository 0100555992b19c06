package sqlinline

const QPing = `--sql 4e83b6e8-7797-4bb8-98d3-aacebc92a79a
select 1;
`
