package mcpserver

// RecordFormatContract describes the persisted CRM document shape for
// LLM consumers working with Raido records.
const RecordFormatContract = `# Raido Record Format Contract

Raido persists its entire client collection as a single JSON document.

## Document

` + "```" + `json
{
  "clients": [ Client, ... ]
}
` + "```" + `

## Client

` + "```" + `json
{
  "id": "a1b2c3d4",              // 8-char opaque token, unique, immutable
  "name": "Ada Lovelace",        // required
  "phone": "555-1111",           // required
  "email": "ada@example.com",    // required
  "status": "Lead",              // recommended: Lead | Active | Inactive
  "value": 2500,                 // non-negative whole dollars
  "source": "Referral",          // recommended: Direct | Referral | Website | Social Media | Event | Other
  "tags": ["VIP", "New"],
  "date_added": "2025-01-15",    // set once at creation, immutable
  "follow_up_date": "2025-01-22",
  "tasks": [ Task, ... ],
  "notes": [ Note, ... ]         // newest note first
}
` + "```" + `

## Task

` + "```" + `json
{
  "id": "e5f6a7b8",
  "task": "Call back about proposal",
  "completed": false,
  "priority": "High",            // Low | Medium | High (default Medium)
  "due_date": "2025-01-20",
  "created_at": "2025-01-15"
}
` + "```" + `

## Note

` + "```" + `json
{
  "id": "c9d0e1f2",
  "text": "Prefers email over phone.",
  "date": "2025-01-15 14:30"
}
` + "```" + `

## Rules

1. **Dates** are ` + "`" + `YYYY-MM-DD` + "`" + ` strings; note timestamps are
   ` + "`" + `YYYY-MM-DD HH:MM` + "`" + `. Both are fixed-width and zero-padded so string
   comparison orders chronologically.
2. **Enumerations are open.** The status, source, priority, and tag values
   above are the recommended vocabulary, not an enforced schema; unknown
   values are preserved.
3. **Ids are opaque.** Never invent ids; use the ids returned by tools.
4. **Notes are newest-first.** Position 0 is always the most recent note.
5. **Deletion cascades.** Deleting a client discards its tasks and notes.
`
