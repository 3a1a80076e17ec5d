// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for staking events
const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	name text not null,
	topic blob(32) not null,
	participant blob(20),
	amount blob,
	timestamp integer not null
);

CREATE INDEX if not exists participantIndex on event(participant);
CREATE INDEX if not exists topicIndex on event(topic);
CREATE INDEX if not exists timestampIndex on event(timestamp);
`
