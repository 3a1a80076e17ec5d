// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage slots and native balances.
// It follows the flow as below:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv bulk ]
//	         |
//	  [ stater cache ]
//	         |
//	     [ kv store ]
//
// Every mutation goes into the stacked map, so a checkpoint can be reverted
// without touching the store. Nothing reaches the store until a stage is committed.
package state
