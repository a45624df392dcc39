package types

// Client -> Server
// Increment / Decrement:
//   team: string
//
// ActivateCell:
//   team: string
//   cell: number (0..35, row-major, 6 columns)
//
// Reset:
//   confirmed: boolean // false is accepted and ignored
//
// Server -> Client
// StateSnapshot:
//   version: number
//   state: Board
//
// Error:
//   error: string
