/*
Package config resolves the daemon's configuration from the open-vswitch
row's external_ids column, following the precedence order of spec.md §6:
a CLI flag, then a system-id-override file, then external_ids:system-id for
chassis identity, and external_ids alone for every other key.
*/
package config
