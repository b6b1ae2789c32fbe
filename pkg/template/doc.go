// Package template implements the logic-limited placeholder language used in
// command spec configs and UI bindings.
//
// The syntax is a subset of Handlebars:
//
//	{{input.user}}                  path lookup, numeric segments index arrays
//	{{storyIds.0}}                  array element
//	{{#if (gt item.stars 10)}}…{{else}}…{{/if}}
//	{{#unless done}}…{{/unless}}
//	{{#each repos}}{{@index}}: {{name}}{{/each}}
//	{{json data}}                   helper call
//	{{! comment }}
//
// Helpers are a fixed set of pure functions (eq, ne, gt, gte, lt, lte, and,
// or, not, json, length). There is no way to call methods, reach the host
// environment, or evaluate arbitrary expressions.
//
// Unlike Handlebars, references to values that are not bound are errors, so a
// broken template never silently renders as an empty string.
package template
