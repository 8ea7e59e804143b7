package codec

// optimalTreeNode is one node of the balanced binary search structure
// built from a symbol-frequency distribution: encoding symbol s walks the
// tree comparing s against node.middle until the [lowerBound,upperBound)
// interval narrows to a single value (original_source's OptimalTreeNode).
type optimalTreeNode struct {
	secondChild int32
	middle      int32
}

// createOptimalTree builds entryCount nodes from distribution (of length
// distributionSize), splitting each range at (approximately) its median
// cumulative frequency so that high-frequency symbols need fewer bit
// decisions to encode. Ranges at or beyond distributionSize-1 (the
// "everything else" bucket) split evenly.
func createOptimalTree(entryCount int, distribution []int64, distributionSize int) []optimalTreeNode {
	entries := make([]optimalTreeNode, entryCount)
	var sum int64
	for i := 0; i < distributionSize; i++ {
		sum += distribution[i]
	}
	count := 0
	buildOptimalTree(entries, &count, distribution, sum, 0, entryCount, distributionSize-1)
	return entries
}

func buildOptimalTree(entries []optimalTreeNode, count *int, distribution []int64, sum int64, start, end, uniformStart int) {
	if end-start > 2 {
		middle := 0
		var halfSum int64
		if sum > 0 && start < uniformStart {
			limit := end - 1
			if uniformStart < limit {
				limit = uniformStart
			}
			for middle = start; middle < limit; middle++ {
				if halfSum >= (sum+1)/2 {
					break
				}
				halfSum += distribution[middle]
			}
		} else {
			middle = start + (end-start)/2
		}

		current := *count
		*count++

		buildOptimalTree(entries, count, distribution, halfSum, start, middle, uniformStart)
		entries[current].middle = int32(middle)
		entries[current].secondChild = int32(*count)
		buildOptimalTree(entries, count, distribution, sum-halfSum, middle, end, uniformStart)
	} else if end-start == 2 {
		entries[*count].middle = int32(start + 1)
		entries[*count].secondChild = 0
		*count++
	}
}

type optimalTreeEncoder struct {
	models []bitModel
}

func newOptimalTreeEncoder() *optimalTreeEncoder {
	models := make([]bitModel, optimalSize)
	for i := range models {
		models[i] = newBitModel()
	}
	return &optimalTreeEncoder{models: models}
}

func (e *optimalTreeEncoder) encode(enc *rangeEncoder, symbol uint32, tree []optimalTreeNode) {
	i := 0
	lower, upper := 0, optimalSize
	for {
		if int(symbol) < int(tree[i].middle) {
			enc.encodeBit(&e.models[i], 0)
			upper = int(tree[i].middle)
			i++
		} else {
			enc.encodeBit(&e.models[i], 1)
			lower = int(tree[i].middle)
			i = int(tree[i].secondChild)
		}
		if upper-lower <= 1 {
			break
		}
	}
}

type optimalTreeDecoder struct {
	models []bitModel
}

func newOptimalTreeDecoder() *optimalTreeDecoder {
	models := make([]bitModel, optimalSize)
	for i := range models {
		models[i] = newBitModel()
	}
	return &optimalTreeDecoder{models: models}
}

func (d *optimalTreeDecoder) decode(dec *rangeDecoder, tree []optimalTreeNode) uint32 {
	i := 0
	lower, upper := 0, optimalSize
	for {
		if dec.decodeBit(&d.models[i]) == 0 {
			upper = int(tree[i].middle)
			i++
		} else {
			lower = int(tree[i].middle)
			i = int(tree[i].secondChild)
		}
		if upper-lower <= 1 {
			break
		}
	}
	return uint32(lower)
}
