/*
Package monitor derives which southbound rows the daemon asks the server to
ship, from the currently-known local scope (spec.md §4.3).

Builder accumulates per-table clauses and finalizes them into a Conditions
set; Manager wraps a Builder with chassis identity and the acknowledged
sequence-number water mark consumers check before advancing nb_cfg (spec.md
§4.7).
*/
package monitor
