package internalminer

import (
	"time"

	"github.com/botcoin-project/botcoin/log"
	"github.com/botcoin-project/botcoin/randomx"
)

// coordinatorLoop builds a MiningContext whenever the active tip changes,
// publishes it to every worker, and retries with exponential backoff when
// template construction fails (spec §4.7).
func (m *Miner) coordinatorLoop() {
	defer m.wg.Done()

	attempt := 0
	var lastBuild time.Time
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		if m.collab.Interrupt != nil && m.collab.Interrupt.Triggered() {
			return
		}

		if !m.shouldMine() {
			if !m.sleepOrStop(backoffDuration(attempt)) {
				return
			}
			attempt++
			continue
		}

		tip, haveTip := m.collab.Tip.ActiveTip()
		if !haveTip {
			if !m.sleepOrStop(backoffDuration(attempt)) {
				return
			}
			attempt++
			continue
		}

		current := m.slot.Get()
		sameTip := current != nil && current.TipHash == tip.BlockHash()
		refreshDue := !lastBuild.IsZero() && time.Since(lastBuild) >= templateRefreshInterval
		if sameTip && !refreshDue {
			if !m.sleepOrStop(minBackoff) {
				return
			}
			continue
		}

		ctx, err := m.buildContext(tip)
		if err != nil {
			log.MinrLog.Warnf("internal miner: template build failed: %v", err)
			if !m.sleepOrStop(backoffDuration(attempt)) {
				return
			}
			attempt++
			continue
		}

		attempt = 0
		lastBuild = time.Now()
		m.templates.Add(1)
		m.slot.Publish(ctx)

		if !m.sleepOrStop(minBackoff) {
			return
		}
	}
}

// buildContext asks the template builder for a fresh block template atop
// tip and assembles the MiningContext every worker will mine against.
func (m *Miner) buildContext(tip ChainTip) (*MiningContext, error) {
	template, err := m.collab.Templates.CreateBlockTemplate(m.cfg.CoinbaseScript)
	if err != nil {
		return nil, err
	}

	seed := randomx.SeedForHeight(uint64(template.Height))

	ctx := &MiningContext{
		JobID:    m.jobID.Add(1),
		Template: template,
		TipHash:  tip.BlockHash(),
		Seed:     seed,
		FastMode: m.cfg.FastMode,
	}
	copy(ctx.Header[:], template.Block.Header.Serialize())
	return ctx, nil
}

// sleepOrStop waits up to d for a tip-change wake or Stop, returning false
// if Stop fired first.
func (m *Miner) sleepOrStop(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-m.stopCh:
		return false
	case <-m.wakeCh:
		return true
	case <-timer.C:
		return true
	}
}
