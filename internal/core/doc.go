// Package core provides the business logic of the OTC order dashboard.
//
// The package is independent of any UI or transport layer. It is used by the
// web handlers and the otcctl command without modification.
//
// # Import Pipeline
//
// An order export is turned into table rows in three stages:
//
//  1. [ReadText] decodes the upload (BOM aware, Windows-1252 fallback).
//  2. [ParseOrders] detects the delimiter and resolves the header row
//     against known column synonyms with [ResolveHeaders]. Records then
//     yields one normalized [OrderRecord] per data row; rows with a bad
//     order date or an empty required field are rejected with a [RowError].
//  3. [Uploader.Replace] empties otc_orders and inserts the records in
//     batches, reporting progress before each batch.
//
// The replace is not atomic. If batch N fails, batches before N stay in the
// table and the returned [BatchError] says how many records were written.
//
// [Service.StartImport] runs stages 1 and 2 synchronously, so schema and
// encoding errors are returned before anything is deleted, then runs
// stage 3 in the background. Follow it with [Service.SubscribeProgress] and
// [Service.GetImportResult].
//
// # Orders and Projects
//
// [Service.SearchOrders] filters and pages otc_orders. [Service.DeleteOrders]
// refuses to run without explicit confirmation. Project calculation methods
// are switched through the switch_project_calculation_method procedure,
// after which the analytics views are refreshed.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Database failures are wrapped in [RemoteError], which keeps the SQLSTATE,
// detail and hint the server reported.
package core
